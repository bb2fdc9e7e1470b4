package errorx

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler converts errors into uniform JSON responses and logs them.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// Respond writes the error to the client as a structured outcome. Internal
// details are logged, never returned.
func (h *Handler) Respond(c *gin.Context, err error) {
	if err == nil {
		return
	}

	e := From(err)
	traceID := uuid.New().String()

	fields := []zap.Field{
		zap.String("trace_id", traceID),
		zap.String("kind", string(e.Kind)),
		zap.String("path", c.Request.URL.Path),
		zap.String("client", c.ClientIP()),
		zap.Time("time", time.Now()),
	}
	if cause := e.Unwrap(); cause != nil {
		fields = append(fields, zap.Error(cause))
	}

	switch e.Kind {
	case KindInternal, KindConnection, KindStorage:
		h.logger.Error(e.Message, fields...)
	default:
		h.logger.Warn(e.Message, fields...)
	}

	c.JSON(e.HTTPStatus(), gin.H{
		"success": false,
		"message": e.Message,
		"kind":    e.Kind,
		"traceId": traceID,
	})
}
