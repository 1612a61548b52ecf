package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dealscout/internal/port"
)

// FilingHandler exposes read access to ingested filings for downstream
// consumers (dashboard, scoring, export).
type FilingHandler struct {
	repo port.FilingRepository
}

// NewFilingHandler creates a new FilingHandler.
func NewFilingHandler(repo port.FilingRepository) *FilingHandler {
	return &FilingHandler{repo: repo}
}

// List handles GET /api/v1/filings with offset/limit pagination.
func (h *FilingHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filings, total, err := h.repo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, filings, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByAccession handles GET /api/v1/filings/:accession.
func (h *FilingHandler) GetByAccession(c *gin.Context) {
	filing, err := h.repo.GetByAccession(c.Request.Context(), c.Param("accession"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, filing)
}
