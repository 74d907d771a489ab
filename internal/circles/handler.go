package circles

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/internal/realtime"
	"github.com/circlehub/backend/pkg/response"
)

// Store is the circle lifecycle persistence the handler depends on.
type Store interface {
	Create(ctx context.Context, actorID int64, c *models.Circle) error
	GetByID(ctx context.Context, id int64) (*models.CircleWithHost, error)
	List(ctx context.Context) ([]models.CircleWithHost, error)
	ListByHost(ctx context.Context, hostID int64) ([]models.CircleWithHost, error)
	ListFollowing(ctx context.Context, viewerID int64) ([]models.CircleWithHost, error)
	Update(ctx context.Context, actorID, circleID int64, p Patch) (*models.Circle, error)
	Delete(ctx context.Context, actorID int64, actorRole models.Role, circleID int64) error
}

// CreateRequest is the body for POST /circles.
type CreateRequest struct {
	HostID            int64  `json:"host_id" binding:"required"`
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	ParticipantsLimit int    `json:"participants_limit"`
	StartDate         string `json:"start_date" binding:"required"`
}

// Handler handles circle HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a circles handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// ParseID parses a :id path parameter.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// List handles GET /circles.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list circles")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /circles/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	cw, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "circle not found")
			return
		}
		response.Internal(c, "failed to fetch circle")
		return
	}
	response.OK(c, cw)
}

// ListByUser handles GET /users/:id/circles.
func (h *Handler) ListByUser(c *gin.Context) {
	hostID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.store.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		response.Internal(c, "failed to list circles")
		return
	}
	response.OK(c, list)
}

// ListFollowing handles GET /circles/following.
func (h *Handler) ListFollowing(c *gin.Context) {
	list, err := h.store.ListFollowing(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		response.Internal(c, "failed to list following circles")
		return
	}
	response.OK(c, list)
}

// Create handles POST /circles. The actor must be the declared host.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date")
		return
	}

	circle := &models.Circle{
		HostID:            req.HostID,
		Title:             req.Title,
		Description:       req.Description,
		ParticipantsLimit: req.ParticipantsLimit,
		StartDate:         startDate,
	}
	if err := h.store.Create(c.Request.Context(), middleware.ActorID(c), circle); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			response.Forbidden(c, "only the host may create this circle")
			return
		}
		response.Internal(c, "failed to create circle")
		return
	}
	response.Created(c, circle)
}

// Update handles PATCH /circles/:id. Host only; merge is truthy-only, so a
// supplied zero value never clears a stored field.
func (h *Handler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.store.Update(c.Request.Context(), middleware.ActorID(c), id, p)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, "circle not found")
		case errors.Is(err, models.ErrUnauthorized):
			response.Forbidden(c, "only the host may edit this circle")
		default:
			response.Internal(c, "failed to update circle")
		}
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /circles/:id. Host or admin.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	err := h.store.Delete(c.Request.Context(), middleware.ActorID(c), middleware.ActorRole(c), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, "circle not found")
		case errors.Is(err, models.ErrUnauthorized):
			response.Forbidden(c, "only the host or an admin may delete this circle")
		default:
			response.Internal(c, "failed to delete circle")
		}
		return
	}
	response.NoContent(c)
}

// Presence returns a handler for GET /circles/:id/presence backed by the
// realtime hub's audience count.
func (h *Handler) Presence(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ParseID(c, "id")
		if !ok {
			return
		}
		response.OK(c, gin.H{"circle_id": id, "count": hub.AudienceCount(id)})
	}
}
