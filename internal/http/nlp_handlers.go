package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/metrics"
	"github.com/SezimOrozobekova/velox-backend/internal/nlp"
)

type processTextReq struct {
	Text string `json:"text"`
}

// ProcessText godoc
// @Summary Extract task fields from free text
// @Tags ai
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body processTextReq true "free text"
// @Success 200 {object} nlp.TaskDraft
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/ai/process [post]
func (h *Handler) ProcessText(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	if h.Extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction not configured"})
		return
	}
	var in processTextReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	categories, err := h.Store.ListCategories(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	draft, err := h.Extractor.Extract(c.Request.Context(), in.Text, categories)
	if err != nil {
		var badJSON *nlp.BadJSONError
		switch {
		case errors.Is(err, nlp.ErrEmptyText):
			metrics.ExtractionTotal.WithLabelValues("client_error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		case errors.Is(err, nlp.ErrNoFallbackCategory):
			metrics.ExtractionTotal.WithLabelValues("client_error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &badJSON):
			metrics.ExtractionTotal.WithLabelValues("upstream_error").Inc()
			log.Errorf("extraction returned bad JSON: %s", badJSON.Raw)
			c.JSON(http.StatusInternalServerError, gin.H{"error": badJSON.Error(), "raw_response": badJSON.Raw})
		default:
			metrics.ExtractionTotal.WithLabelValues("upstream_error").Inc()
			log.Errorf("extraction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	metrics.ExtractionTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, draft)
}
