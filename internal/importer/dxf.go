package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PanelCut/internal/model"
)

// point is a 2D drawing coordinate.
type point struct{ x, y float64 }

// segment is a loose LINE entity waiting to be chained into an outline.
type segment struct{ start, end point }

// bounds is an axis-aligned bounding box of a closed shape.
type bounds struct{ minX, minY, maxX, maxY float64 }

func (b bounds) length() float64 { return b.maxX - b.minX }
func (b bounds) width() float64  { return b.maxY - b.minY }

func boundsOf(pts []point) bounds {
	b := bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	for _, p := range pts {
		b.minX = math.Min(b.minX, p.x)
		b.minY = math.Min(b.minY, p.y)
		b.maxX = math.Max(b.maxX, p.x)
		b.maxY = math.Max(b.maxY, p.y)
	}
	return b
}

// chainTolerance is the endpoint gap below which two LINEs are connected.
const chainTolerance = 0.01

// ImportDXF reads pieces from a DXF drawing. Every closed shape (an
// LWPOLYLINE, a CIRCLE or a loop of LINE entities) becomes one piece sized
// to its bounding box along the drawing's X (length) and Y (width) axes.
// Identical shapes are merged into one request with a quantity.
func ImportDXF(path string, opts Options) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}
	if opts.DefaultThickness <= 0 {
		result.Errors = append(result.Errors, "DXF import needs a thickness")
		return result
	}

	var shapes []bounds
	var segments []segment
	skipped := map[string]int{}

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			pts := make([]point, len(e.Vertices))
			for i, v := range e.Vertices {
				pts[i] = point{v[0], v[1]}
			}
			shapes = append(shapes, boundsOf(pts))

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			shapes = append(shapes, bounds{minX: cx - r, minY: cy - r, maxX: cx + r, maxY: cy + r})

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})

		default:
			skipped[fmt.Sprintf("%T", ent)]++
		}
	}

	for _, loop := range chainSegments(segments, chainTolerance) {
		shapes = append(shapes, boundsOf(loop))
	}

	if n := len(skipped); n > 0 {
		kinds := make([]string, 0, n)
		for k := range skipped {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported %s entities", skipped[k], k))
		}
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	type size struct{ l, w float64 }
	index := map[size]int{}
	for _, b := range shapes {
		s := size{round2(b.length()), round2(b.width())}
		if s.l < chainTolerance || s.w < chainTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", s.l, s.w))
			continue
		}
		if i, ok := index[s]; ok {
			result.Pieces[i].Quantity++
			continue
		}
		index[s] = len(result.Pieces)
		result.Pieces = append(result.Pieces, model.PieceRequest{
			Name:      fmt.Sprintf("DXF Piece %d", len(result.Pieces)+1),
			Length:    s.l,
			Width:     s.w,
			Thickness: opts.DefaultThickness,
			Quantity:  1,
			Grain:     model.GrainFree,
		})
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// chainSegments joins segments end to end and returns the loops that close.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var loops [][]point

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []point{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			loops = append(loops, chain[:len(chain)-1])
		}
	}
	return loops
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tolerance
}
