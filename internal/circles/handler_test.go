package circles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
)

// fakeStore implements Store in memory with the same policy semantics as the
// SQL repository.
type fakeStore struct {
	nextID  int64
	circles map[int64]*models.Circle
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, circles: make(map[int64]*models.Circle)}
}

func (s *fakeStore) Create(_ context.Context, actorID int64, c *models.Circle) error {
	if !CanCreate(actorID, c.HostID) {
		return models.ErrUnauthorized
	}
	if c.ParticipantsLimit <= 0 {
		c.ParticipantsLimit = models.DefaultParticipantsLimit
	}
	c.ID = s.nextID
	s.nextID++
	stored := *c
	s.circles[c.ID] = &stored
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*models.CircleWithHost, error) {
	c, ok := s.circles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.CircleWithHost{Circle: *c, HostUsername: "host"}, nil
}

func (s *fakeStore) List(_ context.Context) ([]models.CircleWithHost, error) {
	var out []models.CircleWithHost
	for _, c := range s.circles {
		out = append(out, models.CircleWithHost{Circle: *c, HostUsername: "host"})
	}
	return out, nil
}

func (s *fakeStore) ListByHost(_ context.Context, hostID int64) ([]models.CircleWithHost, error) {
	var out []models.CircleWithHost
	for _, c := range s.circles {
		if c.HostID == hostID {
			out = append(out, models.CircleWithHost{Circle: *c, HostUsername: "host"})
		}
	}
	return out, nil
}

func (s *fakeStore) ListFollowing(_ context.Context, _ int64) ([]models.CircleWithHost, error) {
	return nil, nil
}

func (s *fakeStore) Update(_ context.Context, actorID, circleID int64, p Patch) (*models.Circle, error) {
	c, ok := s.circles[circleID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !CanModify(actorID, c.HostID) {
		return nil, models.ErrUnauthorized
	}
	p.Apply(c)
	out := *c
	return &out, nil
}

func (s *fakeStore) Delete(_ context.Context, actorID int64, role models.Role, circleID int64) error {
	c, ok := s.circles[circleID]
	if !ok {
		return models.ErrNotFound
	}
	if !CanDelete(actorID, role, c.HostID) {
		return models.ErrUnauthorized
	}
	delete(s.circles, circleID)
	return nil
}

func newTestRouter(store Store, actorID int64, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actorID)
		c.Set(middleware.ContextUserRole, role)
	})
	h := NewHandler(store)
	r.POST("/circles", h.Create)
	r.GET("/circles/:id", h.GetByID)
	r.PATCH("/circles/:id", h.Update)
	r.DELETE("/circles/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCircleAsHost(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, 42, models.RoleMember)

	w := doJSON(t, r, http.MethodPost, "/circles",
		`{"host_id":42,"title":"Run club","participants_limit":20,"start_date":"2025-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data models.Circle `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Data.ID)
	assert.Equal(t, int64(42), body.Data.HostID)
	assert.Equal(t, 20, body.Data.ParticipantsLimit)
}

func TestCreateCircleForAnotherHostIsForbidden(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, 7, models.RoleMember)

	w := doJSON(t, r, http.MethodPost, "/circles",
		`{"host_id":42,"title":"Run club","start_date":"2025-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, store.circles)
}

func TestCreateCircleDefaultsParticipantsLimit(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, 42, models.RoleMember)

	w := doJSON(t, r, http.MethodPost, "/circles",
		`{"host_id":42,"title":"Run club","start_date":"2025-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.DefaultParticipantsLimit, store.circles[1].ParticipantsLimit)
}

func TestCreateCircleRejectsMissingTitle(t *testing.T) {
	r := newTestRouter(newFakeStore(), 42, models.RoleMember)
	w := doJSON(t, r, http.MethodPost, "/circles", `{"host_id":42,"start_date":"2025-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func seedCircle(store *fakeStore, hostID int64) int64 {
	c := &models.Circle{
		HostID:            hostID,
		Title:             "Run club",
		ParticipantsLimit: 20,
		StartDate:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsLive:            true,
	}
	_ = store.Create(context.Background(), hostID, c)
	return c.ID
}

func TestUpdateCircleNotFound(t *testing.T) {
	r := newTestRouter(newFakeStore(), 42, models.RoleMember)
	w := doJSON(t, r, http.MethodPatch, "/circles/99", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCircleAsNonHostIsForbidden(t *testing.T) {
	store := newFakeStore()
	id := seedCircle(store, 42)
	r := newTestRouter(store, 7, models.RoleMember)

	w := doJSON(t, r, http.MethodPatch, "/circles/1", `{"title":"hijacked"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Run club", store.circles[id].Title)
}

func TestUpdateCircleTruthyMerge(t *testing.T) {
	store := newFakeStore()
	id := seedCircle(store, 42)
	r := newTestRouter(store, 42, models.RoleMember)

	// is_live:false is falsy and must not clear the stored true.
	w := doJSON(t, r, http.MethodPatch, "/circles/1", `{"title":"Trail club","is_live":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := store.circles[id]
	assert.Equal(t, "Trail club", got.Title)
	assert.True(t, got.IsLive)
	assert.Equal(t, int64(42), got.HostID)
}

func TestDeleteCircleAsNonHostIsForbidden(t *testing.T) {
	store := newFakeStore()
	id := seedCircle(store, 42)
	r := newTestRouter(store, 7, models.RoleMember)

	w := doJSON(t, r, http.MethodDelete, "/circles/1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, store.circles, id)
}

func TestDeleteCircleAsAdmin(t *testing.T) {
	store := newFakeStore()
	id := seedCircle(store, 42)
	r := newTestRouter(store, 7, models.RoleAdmin)

	w := doJSON(t, r, http.MethodDelete, "/circles/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, store.circles, id)
}

func TestGetCircleInvalidID(t *testing.T) {
	r := newTestRouter(newFakeStore(), 42, models.RoleMember)
	w := doJSON(t, r, http.MethodGet, "/circles/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
