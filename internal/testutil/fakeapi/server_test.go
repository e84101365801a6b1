package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_CRUD(t *testing.T) {
	s := New()

	rec := do(t, s, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = do(t, s, http.MethodPatch, "/api/users/"+created.ID, `{"name":"Annie"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Annie", s.Users()[0].Name)
	assert.Equal(t, "ann@example.com", s.Users()[0].Email)

	rec = do(t, s, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[{"id":"`+created.ID+`","name":"Annie","email":"ann@example.com"}]}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/users/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.Users())

	rec = do(t, s, http.MethodDelete, "/api/users/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{
		http.MethodPost, http.MethodPatch, http.MethodGet, http.MethodDelete, http.MethodDelete,
	}, s.Methods())
}

func TestServer_ValidatesBodies(t *testing.T) {
	s := New()

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/users", `{"name":"Ann"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/users", `{"name":"Ann","email":"nope"}`).Code)

	seeded := s.Seed(User{Name: "Bob", Email: "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPatch, "/api/users/"+seeded[0].ID, `{"email":"nope"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPatch, "/api/users/missing", `{"name":"x"}`).Code)
}

func TestServer_FailNext(t *testing.T) {
	s := New()
	s.FailNext(http.MethodGet, http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/users", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/users", "").Code)
}

func TestServer_CORS(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
