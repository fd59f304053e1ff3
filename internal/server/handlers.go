package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/share"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest      = "bad_request"
	codeInvalidPiece    = "invalid_piece"
	codeUnplaceable     = "unplaceable_piece"
	codeUnknownMaterial = "unknown_material"
	codeNotFound        = "not_found"
	codeCancelled       = "cancelled"
	codeInternal        = "internal"
)

type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	PieceID     string `json:"pieceId,omitempty"`
	Reference   string `json:"reference,omitempty"`
	MaterialRef string `json:"materialRef,omitempty"`
}

type optimizeRequest struct {
	ProjectName string               `json:"projectName"`
	MaterialRef string               `json:"materialRef"`
	Pieces      []model.PieceRequest `json:"pieces"`
	// Settings overrides individual fields of the server settings.
	Settings json.RawMessage `json:"settings,omitempty"`
}

type shareRequest struct {
	ProjectName string                    `json:"projectName"`
	Result      *model.OptimizationResult `json:"result"`
}

type shareResponse struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
}

func bindJSON(c *gin.Context, v interface{}) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err), Code: codeBadRequest})
		return false
	}
	return true
}

// settingsFor applies request overrides over the server settings.
func (s *Server) settingsFor(raw json.RawMessage) (model.Settings, error) {
	settings := s.settings
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("invalid settings: %w", err)
	}
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *Server) handleOptimize(c *gin.Context) {
	var req optimizeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.MaterialRef == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "materialRef is required", Code: codeBadRequest})
		return
	}
	if len(req.Pieces) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "pieces must not be empty", Code: codeBadRequest})
		return
	}
	settings, err := s.settingsFor(req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeBadRequest})
		return
	}

	opt := engine.New(s.catalog,
		engine.WithSettings(settings),
		engine.WithLogger(s.logger),
	)
	result, err := opt.Optimize(c.Request.Context(), model.CutList{
		ProjectName: req.ProjectName,
		MaterialRef: req.MaterialRef,
		Pieces:      req.Pieces,
	})
	if err != nil {
		_ = c.Error(err)
		status, body := optimizeError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("optimize failed", "material", req.MaterialRef, "error", err)
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, result)
}

// optimizeError maps engine errors to a status and body.
func optimizeError(err error) (int, errorResponse) {
	var invalid *model.InvalidPieceError
	var unplaceable *model.UnplaceablePieceError
	var unknown *model.UnknownMaterialError

	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: codeInvalidPiece, PieceID: invalid.PieceID, Reference: invalid.Reference}
	case errors.As(err, &unplaceable):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: codeUnplaceable, PieceID: unplaceable.PieceID, Reference: unplaceable.Reference}
	case errors.As(err, &unknown):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: codeUnknownMaterial, MaterialRef: unknown.MaterialRef}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: codeCancelled}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: codeInternal}
}

func (s *Server) handleShareCreate(c *gin.Context) {
	var req shareRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Result == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "result is required", Code: codeBadRequest})
		return
	}

	ticket, err := s.store.Put(c.Request.Context(), *req.Result, req.ProjectName)
	if err != nil {
		_ = c.Error(err)
		s.logger.Error("share put failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not store result", Code: codeInternal})
		return
	}
	c.JSON(http.StatusCreated, shareResponse{
		ID:        ticket.ID,
		ExpiresAt: ticket.ExpiresAt,
		URL:       share.URL(s.baseURL, ticket.ID),
	})
}

// lookup writes the error response itself and reports false when the share
// cannot be served.
func (s *Server) lookup(c *gin.Context) (share.Shared, bool) {
	shared, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err == nil {
		return shared, true
	}
	if errors.Is(err, share.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "expired or invalid link", Code: codeNotFound})
		return shared, false
	}
	_ = c.Error(err)
	s.logger.Error("share get failed", "id", c.Param("id"), "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not load result", Code: codeInternal})
	return shared, false
}

func (s *Server) handleShareGet(c *gin.Context) {
	shared, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shared)
}

func (s *Server) handleShareQR(c *gin.Context) {
	if _, ok := s.lookup(c); !ok {
		return
	}
	png, err := share.QRCode(share.URL(s.baseURL, c.Param("id")), 256)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not render qr code", Code: codeInternal})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
