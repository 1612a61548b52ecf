package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dealscout/internal/service"
)

// IngestHandler exposes the ingestion run endpoint.
type IngestHandler struct {
	svc service.IngestService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(svc service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// ingestRequest carries an optional date range. Omitting both dates
// ingests today's filings.
type ingestRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Run handles POST /api/v1/ingest.
//
// The response is always a 200 with an itemized summary, even when
// every filing failed: a total failure shows up as ingested == 0 with
// populated errors, not as an HTTP error. Only an unusable request or
// an unreachable search endpoint produce error statuses.
func (h *IngestHandler) Run(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	start, ok := parseDateParam(c, req.StartDate, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateParam(c, req.EndDate, "end_date")
	if !ok {
		return
	}

	summary, err := h.svc.Ingest(c.Request.Context(), start, end)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

func parseDateParam(c *gin.Context, raw, name string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DATE", name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
