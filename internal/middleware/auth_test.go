package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

type fakeAuth map[string]*model.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	switch token {
	case "broken-db":
		return nil, errors.New("database is locked")
	case "deleted":
		return nil, repository.ErrUserNotFound
	}
	u, ok := f[token]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return u, nil
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestAuthMiddleware(t *testing.T) {
	auth := fakeAuth{
		"s-token": {ID: "s1", Role: model.RoleStudent},
		"t-token": {ID: "t1", Role: model.RoleTeacher},
	}

	whoami := func(w http.ResponseWriter, r *http.Request) {
		u := ctxkeys.User(r.Context())
		if u == nil {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(u.ID))
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"valid bearer", "Bearer s-token", http.StatusOK, "s1"},
		{"lowercase scheme", "bearer t-token", http.StatusOK, "t1"},
		{"basic auth ignored", "Basic s-token", http.StatusOK, "anonymous"},
		{"invalid token", "Bearer nope", http.StatusOK, "anonymous"},
		{"deleted user", "Bearer deleted", http.StatusOK, "anonymous"},
		{"store failure", "Bearer broken-db", http.StatusServiceUnavailable, ""},
	}

	h := AuthMiddleware(auth)(http.HandlerFunc(whoami))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	tests := []struct {
		name       string
		user       *model.User
		handler    http.HandlerFunc
		wantStatus int
		wantCode   string
	}{
		{"auth anonymous", nil, RequireAuth(ok), http.StatusUnauthorized, "unauthorized"},
		{"auth student", &model.User{ID: "s", Role: model.RoleStudent}, RequireAuth(ok), http.StatusNoContent, ""},
		{"teacher anonymous", nil, RequireTeacher(ok), http.StatusUnauthorized, "unauthorized"},
		{"teacher student", &model.User{ID: "s", Role: model.RoleStudent}, RequireTeacher(ok), http.StatusForbidden, "forbidden"},
		{"teacher teacher", &model.User{ID: "t", Role: model.RoleTeacher}, RequireTeacher(ok), http.StatusNoContent, ""},
		{"teacher admin", &model.User{ID: "a", Role: model.RoleAdmin}, RequireTeacher(ok), http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/groups", nil)
			if tt.user != nil {
				req = req.WithContext(ctxkeys.WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			tt.handler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}), RequestID, RequestLogging)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}
