package handlers

import (
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/outbox"
	"github.com/servana/eventrelay/internal/transport/http/response"
)

// OutboxHandler is the operator surface: queue stats, dead-letter triage and
// a manual processing pass.
type OutboxHandler struct {
	processor *outbox.Processor
}

func NewOutboxHandler(processor *outbox.Processor) *OutboxHandler {
	return &OutboxHandler{processor: processor}
}

func (h *OutboxHandler) stats(c *gin.Context) {
	stats, err := h.processor.Stats(c.Request.Context())
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "stats failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, stats, nil)
}

func (h *OutboxHandler) deadEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.processor.DeadEvents(c.Request.Context(), limit)
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "list failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, records, nil)
}

type requeueDeadRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

func (h *OutboxHandler) requeueDead(c *gin.Context) {
	var req requeueDeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	requeued, err := h.processor.RetryDeadEvents(c.Request.Context(), req.IDs)
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "requeue failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"requeued": requeued}, nil)
}

func (h *OutboxHandler) processNow(c *gin.Context) {
	if err := h.processor.ProcessNow(c.Request.Context()); err != nil {
		if errors.Is(err, outbox.ErrTickActive) {
			response.RespondError(c, nethttp.StatusConflict, "a tick is already active")
			return
		}
		response.RespondError(c, nethttp.StatusInternalServerError, "process failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "processed"}, nil)
}
