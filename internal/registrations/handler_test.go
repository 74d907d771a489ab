package registrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
)

type fakeStore struct {
	registerErr  error
	deregistered []int64
}

func (s *fakeStore) Register(_ context.Context, _, _ int64) error {
	return s.registerErr
}

func (s *fakeStore) Deregister(_ context.Context, _ int64, circleID int64) error {
	s.deregistered = append(s.deregistered, circleID)
	return nil
}

func (s *fakeStore) ListRegistrants(_ context.Context, _ int64) ([]models.UserRef, error) {
	return []models.UserRef{{ID: 1, Username: "alice"}}, nil
}

func (s *fakeStore) ListRegistered(_ context.Context, _ int64) ([]models.CircleWithHost, error) {
	return nil, nil
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(7))
		c.Set(middleware.ContextUserRole, models.RoleMember)
	})
	h := NewHandler(store, zap.NewNop())
	r.PUT("/circles/:id/registration", h.Register)
	r.DELETE("/circles/:id/registration", h.Deregister)
	r.GET("/circles/:id/registrants", h.ListRegistrants)
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"success", nil, http.StatusNoContent},
		{"unknown circle", models.ErrNotFound, http.StatusNotFound},
		{"full circle", models.ErrCircleFull, http.StatusConflict},
		{"duplicate", models.ErrAlreadyRegistered, http.StatusConflict},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeStore{registerErr: tt.err})
			w := do(r, http.MethodPut, "/circles/5/registration")
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestDeregisterIsAlwaysNoContent(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store)

	// Deregistering twice is fine; absence is not an error.
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/circles/5/registration").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/circles/5/registration").Code)
	assert.Equal(t, []int64{5, 5}, store.deregistered)
}

func TestRegisterInvalidCircleID(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/circles/nope/registration").Code)
}

func TestListRegistrants(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	w := do(r, http.MethodGet, "/circles/5/registrants")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}
