package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/service/pipeline"
)

// ActorHeader names the user behind break events.
const ActorHeader = "X-Actor"

// PipelineHandler exposes the hatchery pipeline over HTTP.
type PipelineHandler struct {
	svc    *pipeline.Service
	logger *zap.Logger
}

// NewPipelineHandler constructs the HTTP handler adapter.
func NewPipelineHandler(svc *pipeline.Service, logger *zap.Logger) *PipelineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineHandler{svc: svc, logger: logger}
}

// StatusFor maps a pipeline error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrConsistency):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *PipelineHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error()}

	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["requested"] = stockErr.Requested
		body["available"] = stockErr.Available
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("pipeline operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		body["error"] = "internal error"
	} else {
		h.logger.Warn("pipeline operation rejected",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, body)
}

func (h *PipelineHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// pathID parses the :id parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) string {
	if a := strings.TrimSpace(c.GetHeader(ActorHeader)); a != "" {
		return a
	}
	return "anonymous"
}
