package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glmdesign/app"
	"glmdesign/domain/core"
	"glmdesign/domain/design"
	"glmdesign/domain/run"
	apperrors "glmdesign/internal/errors"
	"glmdesign/internal/report"
)

// DesignHandler handles design preparation and run lookups
type DesignHandler struct {
	service  *app.DesignService
	renderer *report.Renderer
}

// NewDesignHandler creates a new design handler
func NewDesignHandler(service *app.DesignService, renderer *report.Renderer) *DesignHandler {
	if renderer == nil {
		renderer = report.NewRenderer(report.DefaultPreviewRows)
	}
	return &DesignHandler{service: service, renderer: renderer}
}

// CreateDesignRequest is the body of POST /api/v1/designs
type CreateDesignRequest struct {
	Name    string         `json:"name"`
	Model   design.Model   `json:"model"`
	Options design.Options `json:"options"`
}

// ListDesignsResponse is the body of GET /api/v1/designs
type ListDesignsResponse struct {
	Runs   []*run.DesignRun `json:"runs"`
	Count  int              `json:"count"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// Create prepares and stores a design
func (h *DesignHandler) Create(c *gin.Context) {
	var req CreateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("invalid request body: %w", err)))
		return
	}

	dr, err := h.service.Prepare(c.Request.Context(), app.PrepareRequest{
		Name:    req.Name,
		Model:   req.Model,
		Options: req.Options,
		Save:    true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dr)
}

// List returns stored runs, newest first
func (h *DesignHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		writeError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		writeError(c, err)
		return
	}

	runs, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListDesignsResponse{Runs: runs, Count: len(runs), Limit: limit, Offset: offset})
}

// Get returns one stored run
func (h *DesignHandler) Get(c *gin.Context) {
	dr, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dr)
}

// Delete removes a stored run
func (h *DesignHandler) Delete(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		writeError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Report renders a stored run as HTML, or Markdown with ?format=markdown
func (h *DesignHandler) Report(c *gin.Context) {
	dr, ok := h.lookup(c)
	if !ok {
		return
	}

	if c.Query("format") == "markdown" {
		md, err := h.renderer.Markdown(dr)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", md)
		return
	}

	page, err := h.renderer.HTML(dr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *DesignHandler) lookup(c *gin.Context) (*run.DesignRun, bool) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		writeError(c, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	dr, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return dr, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.InvalidInput(key + " must be a non-negative integer")
	}
	return v, nil
}

// writeError maps an error onto its status code and a JSON body
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  apperrors.Classify(err),
	})
}
