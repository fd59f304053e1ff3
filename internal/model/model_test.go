package model

import "testing"

func TestParseGrain(t *testing.T) {
	cases := map[string]Grain{
		"":           GrainFree,
		"None":       GrainFree,
		"free":       GrainFree,
		"L":          GrainLengthwise,
		"lengthwise": GrainLengthwise,
		"Widthwise":  GrainWidthwise,
		"w":          GrainWidthwise,
	}
	for in, want := range cases {
		got, err := ParseGrain(in)
		if err != nil {
			t.Errorf("ParseGrain(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseGrain(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseGrain("diagonal"); err == nil {
		t.Error("expected error for unknown grain")
	}
}

func TestGrainAllowsRotation(t *testing.T) {
	if !GrainFree.AllowsRotation() || !Grain("").AllowsRotation() {
		t.Error("free grain should allow rotation")
	}
	if GrainLengthwise.AllowsRotation() || GrainWidthwise.AllowsRotation() {
		t.Error("locked grain should not allow rotation")
	}
}

func TestEdgeSetRotated(t *testing.T) {
	e := EdgeSet{Top: true, Left: true}
	r := e.Rotated()
	if r != (EdgeSet{Left: true, Bottom: true}) {
		t.Errorf("unexpected rotation result %+v", r)
	}
	// Four quarter turns bring the flags back.
	if e.Rotated().Rotated().Rotated().Rotated() != e {
		t.Error("four rotations should be the identity")
	}
}

func TestEdgeSetLinearLengthAndString(t *testing.T) {
	e := EdgeSet{Top: true, Bottom: true, Right: true}
	if got := e.LinearLength(720, 560); got != 2000 {
		t.Errorf("expected 2000, got %.0f", got)
	}
	if e.EdgeCount() != 3 {
		t.Errorf("expected 3 edges, got %d", e.EdgeCount())
	}
	if e.String() != "T+B+R" {
		t.Errorf("expected T+B+R, got %s", e.String())
	}
	if (EdgeSet{}).String() != "None" {
		t.Error("expected None for empty set")
	}
}

func TestParseEdgeSet(t *testing.T) {
	e, err := ParseEdgeSet("top, bottom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != (EdgeSet{Top: true, Bottom: true}) {
		t.Errorf("unexpected set %+v", e)
	}
	e, _ = ParseEdgeSet("T+B+L+R")
	if e.EdgeCount() != 4 {
		t.Errorf("expected 4 edges, got %d", e.EdgeCount())
	}
	e, _ = ParseEdgeSet("all")
	if e.EdgeCount() != 4 {
		t.Errorf("expected all edges, got %d", e.EdgeCount())
	}
	if _, err := ParseEdgeSet("front"); err == nil {
		t.Error("expected error for unknown edge")
	}
}

func TestDefaultSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if s.MergeInterval != 20 || s.ThicknessTolerance != 0.5 {
		t.Errorf("unexpected defaults %+v", s)
	}

	s.Heuristic = "worst-fit"
	if err := s.Validate(); err == nil {
		t.Error("expected error for unknown heuristic")
	}
}

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{Kerf: 3}.WithDefaults()
	if s.Kerf != 3 {
		t.Errorf("kerf should be kept, got %g", s.Kerf)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("filled settings should validate: %v", err)
	}
}

func TestTypedErrorMessages(t *testing.T) {
	err := &UnplaceablePieceError{PieceID: "p1-1", Reference: "S-01", Length: 3000, Width: 500, Thickness: 19, Grain: GrainFree}
	want := "piece p1-1 [S-01] (3000x500x19, grain free) does not fit any stock sheet"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	m := &UnknownMaterialError{MaterialRef: "OAK-40"}
	if m.Error() != `unknown material "OAK-40": catalog returned no stock sheets` {
		t.Errorf("unexpected message %q", m.Error())
	}
}
