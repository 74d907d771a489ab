package follows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
)

type fakeStore struct {
	followErr error
	follows   [][2]int64
}

func (s *fakeStore) Follow(_ context.Context, followerID, userID int64) error {
	if s.followErr != nil {
		return s.followErr
	}
	s.follows = append(s.follows, [2]int64{followerID, userID})
	return nil
}

func (s *fakeStore) Unfollow(_ context.Context, _, _ int64) error { return nil }

func (s *fakeStore) ListFollowed(_ context.Context, _ int64) ([]models.UserRef, error) {
	return nil, nil
}

func newTestRouter(store Store, actorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actorID)
		c.Set(middleware.ContextUserRole, models.RoleMember)
	})
	h := NewHandler(store)
	r.PUT("/users/:id/follow", h.Follow)
	r.DELETE("/users/:id/follow", h.Unfollow)
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFollowUser(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store, 7)

	w := do(r, http.MethodPut, "/users/42/follow")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [][2]int64{{7, 42}}, store.follows)
}

func TestFollowSelfRejected(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store, 7)

	w := do(r, http.MethodPut, "/users/7/follow")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.follows)
}

func TestFollowUnknownUser(t *testing.T) {
	r := newTestRouter(&fakeStore{followErr: models.ErrNotFound}, 7)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/users/42/follow").Code)
}

func TestUnfollowIsNoOp(t *testing.T) {
	r := newTestRouter(&fakeStore{}, 7)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/users/42/follow").Code)
}
