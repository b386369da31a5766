package ingest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow/pkg/logger"
)

// ComplaintHandler serves the complaint submission endpoint.
type ComplaintHandler struct {
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewComplaintHandler returns a handler publishing accepted complaints through publisher.
func NewComplaintHandler(publisher Publisher, log *zap.Logger) *ComplaintHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComplaintHandler{publisher: publisher, logger: log, now: time.Now}
}

// Submit accepts a complaint for asynchronous processing. It answers 202 once
// the complaint is on the queue; nothing downstream has happened yet.
func (h *ComplaintHandler) Submit(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	var req ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields, ok := fieldErrors(err); ok {
			log.Warn("invalid complaint submission", zap.Any("fields", fields))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
			return
		}
		log.Warn("malformed complaint submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	complaint := req.ToComplaint(h.now())
	log = log.With(zap.String("complaint_id", complaint.ComplaintID.String()))
	log.Info("complaint received", zap.String("customer_email", complaint.CustomerEmail))

	if err := h.publisher.Publish(c.Request.Context(), complaint); err != nil {
		_ = c.Error(err)
		log.Error("failed to publish complaint", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	log.Info("complaint queued for processing")
	c.JSON(http.StatusAccepted, AcceptedResponse{
		ComplaintID: complaint.ComplaintID.String(),
		Status:      "accepted",
	})
}

// Liveness reports that the process is up.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
