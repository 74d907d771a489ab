package tags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
)

type fakeStore struct {
	addErr    error
	removeErr error
	added     []string
	byCircle  []string
}

func (s *fakeStore) Add(_ context.Context, _, _ int64, tag string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, tag)
	return nil
}

func (s *fakeStore) Remove(_ context.Context, _, _ int64, _ string) error { return s.removeErr }

func (s *fakeStore) ListByCircle(_ context.Context, _ int64) ([]string, error) {
	return s.byCircle, nil
}

func (s *fakeStore) ListAll(_ context.Context) ([]string, error) { return nil, nil }

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(7))
		c.Set(middleware.ContextUserRole, models.RoleMember)
	})
	h := NewHandler(store)
	r.PUT("/circles/:id/tags", h.Add)
	r.DELETE("/circles/:id/tags", h.Remove)
	r.GET("/circles/:id/tags", h.ListByCircle)
	r.GET("/tags", h.ListAll)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddTag(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store)

	w := do(r, http.MethodPut, "/circles/5/tags", `{"tag":"running"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"running"}, store.added)
}

func TestAddTagRequiresBody(t *testing.T) {
	r := newTestRouter(&fakeStore{})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/circles/5/tags", `{}`).Code)
}

func TestTagMutationStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown circle", models.ErrNotFound, http.StatusNotFound},
		{"non-host", models.ErrUnauthorized, http.StatusForbidden},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeStore{addErr: tt.err, removeErr: tt.err})
			assert.Equal(t, tt.code, do(r, http.MethodPut, "/circles/5/tags", `{"tag":"x"}`).Code)
			assert.Equal(t, tt.code, do(r, http.MethodDelete, "/circles/5/tags", `{"tag":"x"}`).Code)
		})
	}
}

func TestListTagsNormalizesNilToEmptyArray(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := do(r, http.MethodGet, "/circles/5/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = do(r, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}
