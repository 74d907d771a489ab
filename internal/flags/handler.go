package flags

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/pkg/queue"
	"github.com/circlehub/backend/pkg/response"
)

// Store is the flag persistence the handler depends on.
type Store interface {
	Raise(ctx context.Context, actorID, circleID int64) error
	ListByCircle(ctx context.Context, circleID int64) ([]models.Flag, error)
	ClearOwn(ctx context.Context, actorID, circleID int64) error
	ClearAll(ctx context.Context, circleID int64) error
	ModerationQueue(ctx context.Context) ([]models.FlaggedCircle, error)
}

// Enqueuer pushes moderation review jobs after flag mutations.
type Enqueuer interface {
	EnqueueFlagRaised(ctx context.Context, payload queue.ModerationPayload) error
	EnqueueFlagsCleared(ctx context.Context, payload queue.ModerationPayload) error
}

// Handler handles flag HTTP endpoints.
type Handler struct {
	store  Store
	jobs   Enqueuer
	logger *zap.Logger
}

// NewHandler creates a flags handler. jobs may be nil when no queue is wired.
func NewHandler(store Store, jobs Enqueuer, logger *zap.Logger) *Handler {
	return &Handler{store: store, jobs: jobs, logger: logger}
}

// Raise handles POST /circles/:id/flags.
func (h *Handler) Raise(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	actorID := middleware.ActorID(c)
	if err := h.store.Raise(c.Request.Context(), actorID, circleID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "circle not found")
			return
		}
		h.logger.Error("raise flag", zap.Error(err), zap.Int64("circle_id", circleID))
		response.Internal(c, "failed to raise flag")
		return
	}
	if h.jobs != nil {
		// Review job delivery is best-effort; the flag row is the source of truth.
		if err := h.jobs.EnqueueFlagRaised(c.Request.Context(), queue.ModerationPayload{CircleID: circleID, FlagUserID: actorID}); err != nil {
			h.logger.Warn("enqueue flag job", zap.Error(err), zap.Int64("circle_id", circleID))
		}
	}
	response.Created(c, gin.H{"circle_id": circleID})
}

// ListByCircle handles GET /circles/:id/flags.
func (h *Handler) ListByCircle(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.store.ListByCircle(c.Request.Context(), circleID)
	if err != nil {
		response.Internal(c, "failed to list flags")
		return
	}
	response.OK(c, list)
}

// ClearOwn handles DELETE /circles/:id/flags/mine. Removes only the caller's
// flags; a no-op when the caller never flagged the circle.
func (h *Handler) ClearOwn(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.ClearOwn(c.Request.Context(), middleware.ActorID(c), circleID); err != nil {
		response.Internal(c, "failed to clear flag")
		return
	}
	response.NoContent(c)
}

// ClearAll handles DELETE /circles/:id/flags. Routed admin-only.
func (h *Handler) ClearAll(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.ClearAll(c.Request.Context(), circleID); err != nil {
		response.Internal(c, "failed to clear flags")
		return
	}
	if h.jobs != nil {
		if err := h.jobs.EnqueueFlagsCleared(c.Request.Context(), queue.ModerationPayload{CircleID: circleID}); err != nil {
			h.logger.Warn("enqueue clear job", zap.Error(err), zap.Int64("circle_id", circleID))
		}
	}
	response.NoContent(c)
}

// ModerationQueue handles GET /moderation/queue.
func (h *Handler) ModerationQueue(c *gin.Context) {
	list, err := h.store.ModerationQueue(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to fetch moderation queue")
		return
	}
	response.OK(c, list)
}
