package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-media-cms/internal/model"
	"go-media-cms/internal/security"
)

type tokenValidator interface {
	Validate(ctx context.Context, token string) (security.Claims, bool, error)
}

// RoleSource looks up the holder behind a token. The role is read from the
// account on every request, so a role change applies to live tokens.
type RoleSource interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalResolver turns the bearer token of a request into a Principal.
type PrincipalResolver struct {
	validator tokenValidator
	roles     RoleSource
}

func NewPrincipalResolver(validator tokenValidator, roles RoleSource) *PrincipalResolver {
	return &PrincipalResolver{validator: validator, roles: roles}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// CurrentPrincipal returns nil for a missing, malformed, forged, expired or
// revoked token and for a holder that no longer exists. Only storage
// failures are returned as errors.
func (pr *PrincipalResolver) CurrentPrincipal(r *http.Request) (*model.Principal, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, nil
	}

	claims, usable, err := pr.validator.Validate(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, nil
	}

	user, err := pr.roles.FindByID(r.Context(), claims.HolderID)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve holder role: %w: %w", model.ErrStoreUnavailable, err)
	}

	return &model.Principal{
		Identity: user.Username,
		HolderID: user.ID,
		Role:     user.Role,
	}, nil
}

// RequireRole reports whether p holds at least role.
func RequireRole(p *model.Principal, role model.Role) bool {
	return p.HasRole(role)
}

// Authenticate resolves the principal once and attaches it to the request.
// Anonymous requests pass through with no principal.
func (pr *PrincipalResolver) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := pr.CurrentPrincipal(r)
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "session store unavailable")
			return
		}
		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (pr *PrincipalResolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (pr *PrincipalResolver) RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RequireRole(PrincipalFromContext(r.Context()), role) {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	principal, _ := ctx.Value(principalContextKey).(*model.Principal)
	return principal
}
