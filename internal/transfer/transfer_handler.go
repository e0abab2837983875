package transfer

import (
	"encoding/json"
	"net/http"
	"time"

	"transferdesk/internal/domain"
	"transferdesk/internal/shared/apperror"
	"transferdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("transfer.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transfer.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.releaseIdempotencyLock(c)
		h.writeServiceError(c, "create transfer request", err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var q ListTransferQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindingError(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		h.writeServiceError(c, "list transfer requests", err)
		return
	}

	meta := response.NewPaginationMeta(total, q.Page, q.Limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	detail, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "get transfer request", err)
		return
	}

	response.Success(c, http.StatusOK, detail, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	summary, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"), req)
	h.respondTransition(c, "approve transfer request", summary, err)
}

func (h *Handler) Reject(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	summary, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req)
	h.respondTransition(c, "reject transfer request", summary, err)
}

func (h *Handler) RequestChanges(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req RequestChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	summary, err := h.service.RequestChanges(c.Request.Context(), actor, c.Param("id"), req)
	h.respondTransition(c, "request changes on transfer request", summary, err)
}

func (h *Handler) Resubmit(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req ResubmitTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	summary, err := h.service.Resubmit(c.Request.Context(), actor, c.Param("id"), req)
	h.respondTransition(c, "resubmit transfer request", summary, err)
}

func (h *Handler) AssignManager(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req AssignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotencyLock(c)
		h.writeBindingError(c, err)
		return
	}

	summary, err := h.service.AssignManager(c.Request.Context(), actor, c.Param("id"), req)
	h.respondTransition(c, "assign manager", summary, err)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "load stats", err)
		return
	}

	response.Success(c, http.StatusOK, stats, nil)
}

func (h *Handler) actorFrom(c *gin.Context) (domain.Actor, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Authentication is required", nil)
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: c.GetString("role")}, true
}

// respondTransition finishes a transition endpoint: on success the response
// is cached for Idempotency-Key replay, on failure the in-flight lock is
// released so the client can retry.
func (h *Handler) respondTransition(c *gin.Context, op string, summary *TransferSummary, err error) {
	if err != nil {
		h.releaseIdempotencyLock(c)
		h.writeServiceError(c, op, err)
		return
	}
	h.cacheIdempotentResponse(c, summary)
	response.Success(c, http.StatusOK, summary, nil)
}

func (h *Handler) writeBindingError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeServiceError(c *gin.Context, op string, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn(op+" failed",
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// cacheIdempotentResponse stores the successful create response under the
// key the idempotency middleware computed, so a retry with the same
// Idempotency-Key replays this response instead of creating twice.
func (h *Handler) cacheIdempotentResponse(c *gin.Context, data any) {
	cacheKey := c.GetString("idempotency_cache_key")
	if cacheKey == "" || h.rdb == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	h.rdb.Set(c.Request.Context(), cacheKey, payload, 24*time.Hour)
	if lockKey := c.GetString("idempotency_lock_key"); lockKey != "" {
		h.rdb.Del(c.Request.Context(), lockKey)
	}
}

// releaseIdempotencyLock frees the in-flight lock after a failed attempt so
// the client can retry with the same key.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	lockKey := c.GetString("idempotency_lock_key")
	if lockKey == "" || h.rdb == nil {
		return
	}
	h.rdb.Del(c.Request.Context(), lockKey)
}
