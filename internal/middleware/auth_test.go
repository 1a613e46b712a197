package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-media-cms/internal/model"
	"go-media-cms/internal/security"
)

type stubValidator struct {
	tokens map[string]int64
	err    error
}

func (s stubValidator) Validate(_ context.Context, token string) (security.Claims, bool, error) {
	if s.err != nil {
		return security.Claims{}, false, s.err
	}
	holderID, ok := s.tokens[token]
	if !ok {
		return security.Claims{}, false, nil
	}
	return security.Claims{HolderID: holderID, RegisteredClaims: jwt.RegisteredClaims{Subject: "ignored"}}, true, nil
}

type stubRoles struct {
	users map[int64]model.User
	err   error
}

func (s stubRoles) FindByID(_ context.Context, id int64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func newTestResolver() *PrincipalResolver {
	return NewPrincipalResolver(
		stubValidator{tokens: map[string]int64{"user-token": 7, "admin-token": 1, "orphan-token": 42}},
		stubRoles{users: map[int64]model.User{
			7: {ID: 7, Username: "alice", Role: model.RoleUser},
			1: {ID: 1, Username: "root", Role: model.RoleAdmin},
		}},
	)
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"missing":     {header: "", ok: false},
		"basic":       {header: "Basic abc", ok: false},
		"empty":       {header: "Bearer   ", ok: false},
		"valid":       {header: "Bearer abc.def", token: "abc.def", ok: true},
		"lower case":  {header: "bearer abc", token: "abc", ok: true},
		"just bearer": {header: "Bearer", ok: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			token, ok := BearerToken(req)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}

func TestPrincipalResolver_CurrentPrincipal(t *testing.T) {
	resolver := newTestResolver()

	p, err := resolver.CurrentPrincipal(requestWithToken("user-token"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Identity)
	assert.Equal(t, int64(7), p.HolderID)
	assert.Equal(t, model.RoleUser, p.Role)

	for _, token := range []string{"", "unknown-token", "orphan-token"} {
		p, err := resolver.CurrentPrincipal(requestWithToken(token))
		require.NoError(t, err, token)
		assert.Nil(t, p, token)
	}
}

func TestPrincipalResolver_StoreFaultsSurface(t *testing.T) {
	outage := errors.New("redis: connection refused")

	resolver := NewPrincipalResolver(stubValidator{err: outage}, stubRoles{})
	_, err := resolver.CurrentPrincipal(requestWithToken("user-token"))
	assert.ErrorIs(t, err, outage)

	resolver = NewPrincipalResolver(stubValidator{tokens: map[string]int64{"t": 7}}, stubRoles{err: outage})
	_, err = resolver.CurrentPrincipal(requestWithToken("t"))
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestRequireRolePredicate(t *testing.T) {
	assert.False(t, RequireRole(nil, model.RoleUser))
	assert.True(t, RequireRole(&model.Principal{Role: model.RoleUser}, model.RoleUser))
	assert.False(t, RequireRole(&model.Principal{Role: model.RoleUser}, model.RoleAdmin))
	assert.True(t, RequireRole(&model.Principal{Role: model.RoleAdmin}, model.RoleAdmin))
	assert.True(t, RequireRole(&model.Principal{Role: model.RoleAdmin}, model.RoleUser))
	assert.False(t, RequireRole(&model.Principal{Role: "EDITOR"}, model.RoleUser))
}

func TestPrincipalResolver_Middlewares(t *testing.T) {
	resolver := newTestResolver()

	var seen *model.Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	public := resolver.Authenticate(inner)
	authed := resolver.Authenticate(resolver.RequireAuth(inner))
	admin := resolver.Authenticate(resolver.RequireRole(model.RoleAdmin)(inner))

	cases := []struct {
		name    string
		handler http.Handler
		token   string
		status  int
	}{
		{"public anonymous", public, "", http.StatusNoContent},
		{"public with revoked token", public, "revoked", http.StatusNoContent},
		{"auth anonymous", authed, "", http.StatusForbidden},
		{"auth user", authed, "user-token", http.StatusNoContent},
		{"admin anonymous", admin, "", http.StatusForbidden},
		{"admin as user", admin, "user-token", http.StatusForbidden},
		{"admin as admin", admin, "admin-token", http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			rec := httptest.NewRecorder()
			tc.handler.ServeHTTP(rec, requestWithToken(tc.token))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)
			}
		})
	}

	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, requestWithToken("admin-token"))
	require.NotNil(t, seen)
	assert.Equal(t, "root", seen.Identity)
}

func TestPrincipalResolver_OutageIsServiceUnavailable(t *testing.T) {
	resolver := NewPrincipalResolver(stubValidator{err: model.ErrStoreUnavailable}, stubRoles{})

	called := false
	handler := resolver.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken("any"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
	assert.False(t, called)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken(""))
	assert.True(t, called)
}
