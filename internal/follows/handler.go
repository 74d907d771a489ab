package follows

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/pkg/response"
)

// Store is the follow edge persistence the handler depends on.
type Store interface {
	Follow(ctx context.Context, followerID, userID int64) error
	Unfollow(ctx context.Context, followerID, userID int64) error
	ListFollowed(ctx context.Context, followerID int64) ([]models.UserRef, error)
}

// Handler handles follow HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a follows handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Follow handles PUT /users/:id/follow.
func (h *Handler) Follow(c *gin.Context) {
	userID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	actorID := middleware.ActorID(c)
	if actorID == userID {
		response.BadRequest(c, "cannot follow yourself")
		return
	}
	if err := h.store.Follow(c.Request.Context(), actorID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to follow")
		return
	}
	response.NoContent(c)
}

// Unfollow handles DELETE /users/:id/follow. No-op when absent.
func (h *Handler) Unfollow(c *gin.Context) {
	userID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Unfollow(c.Request.Context(), middleware.ActorID(c), userID); err != nil {
		response.Internal(c, "failed to unfollow")
		return
	}
	response.NoContent(c)
}

// ListFollowed handles GET /users/following.
func (h *Handler) ListFollowed(c *gin.Context) {
	list, err := h.store.ListFollowed(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		response.Internal(c, "failed to list followed users")
		return
	}
	response.OK(c, list)
}
