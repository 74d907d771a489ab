package tags

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/pkg/response"
)

// Store is the tag persistence the handler depends on.
type Store interface {
	Add(ctx context.Context, actorID, circleID int64, tag string) error
	Remove(ctx context.Context, actorID, circleID int64, tag string) error
	ListByCircle(ctx context.Context, circleID int64) ([]string, error)
	ListAll(ctx context.Context) ([]string, error)
}

// TagRequest is the body for PUT/DELETE /circles/:id/tags.
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// Handler handles tag HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a tags handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Add handles PUT /circles/:id/tags (host only).
func (h *Handler) Add(c *gin.Context) {
	h.mutate(c, h.store.Add)
}

// Remove handles DELETE /circles/:id/tags (host only).
func (h *Handler) Remove(c *gin.Context) {
	h.mutate(c, h.store.Remove)
}

func (h *Handler) mutate(c *gin.Context, op func(ctx context.Context, actorID, circleID int64, tag string) error) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	err := op(c.Request.Context(), middleware.ActorID(c), circleID, req.Tag)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, "circle not found")
		case errors.Is(err, models.ErrUnauthorized):
			response.Forbidden(c, "only the host may manage tags")
		default:
			response.Internal(c, "failed to manage tag")
		}
		return
	}
	response.NoContent(c)
}

// ListByCircle handles GET /circles/:id/tags.
func (h *Handler) ListByCircle(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.store.ListByCircle(c.Request.Context(), circleID)
	if err != nil {
		response.Internal(c, "failed to list tags")
		return
	}
	if list == nil {
		list = []string{}
	}
	response.OK(c, list)
}

// ListAll handles GET /tags.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list tags")
		return
	}
	if list == nil {
		list = []string{}
	}
	response.OK(c, list)
}
