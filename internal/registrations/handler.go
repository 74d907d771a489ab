package registrations

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/pkg/response"
)

// Store is the membership persistence the handler depends on.
type Store interface {
	Register(ctx context.Context, userID, circleID int64) error
	Deregister(ctx context.Context, userID, circleID int64) error
	ListRegistrants(ctx context.Context, circleID int64) ([]models.UserRef, error)
	ListRegistered(ctx context.Context, userID int64) ([]models.CircleWithHost, error)
}

// Handler handles membership HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register handles PUT /circles/:id/registration.
func (h *Handler) Register(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	actorID := middleware.ActorID(c)
	err := h.store.Register(c.Request.Context(), actorID, circleID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, "circle not found")
		case errors.Is(err, models.ErrCircleFull):
			response.Conflict(c, "circle is full")
		case errors.Is(err, models.ErrAlreadyRegistered):
			response.Conflict(c, "already registered")
		default:
			h.logger.Error("register", zap.Error(err), zap.Int64("circle_id", circleID))
			response.Internal(c, "failed to register")
		}
		return
	}
	response.NoContent(c)
}

// Deregister handles DELETE /circles/:id/registration. No-op when absent.
func (h *Handler) Deregister(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Deregister(c.Request.Context(), middleware.ActorID(c), circleID); err != nil {
		h.logger.Error("deregister", zap.Error(err), zap.Int64("circle_id", circleID))
		response.Internal(c, "failed to deregister")
		return
	}
	response.NoContent(c)
}

// ListRegistrants handles GET /circles/:id/registrants.
func (h *Handler) ListRegistrants(c *gin.Context) {
	circleID, ok := circles.ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.store.ListRegistrants(c.Request.Context(), circleID)
	if err != nil {
		response.Internal(c, "failed to list registrants")
		return
	}
	response.OK(c, list)
}

// ListRegistered handles GET /circles/registered.
func (h *Handler) ListRegistered(c *gin.Context) {
	list, err := h.store.ListRegistered(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		response.Internal(c, "failed to list registered circles")
		return
	}
	response.OK(c, list)
}
