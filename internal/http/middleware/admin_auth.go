package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/dental-voice-api/internal/auth"
)

type contextKey string

const adminUserKey contextKey = "adminUser"

// MsgInvalidCredentials is the only reason a protected route gives for a 401.
const MsgInvalidCredentials = "Could not validate credentials"

// Authenticator resolves a bearer token to an admin. *auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.PublicUser, error)
}

// UserCounter reports whether any admin exists. *auth.Service implements it.
type UserCounter interface {
	HasUsers(ctx context.Context) (bool, error)
}

// AdminBearer requires a valid admin access token and stores the admin's
// public fields on the request context.
func AdminBearer(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := authenticate(r, authn)
			if !ok {
				unauthorized(w, MsgInvalidCredentials)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdminUser(r.Context(), *user)))
		})
	}
}

// BootstrapOrBearer lets requests through unauthenticated while no admin
// exists, so the first account can be created. Afterwards it behaves like
// AdminBearer. A failed user count is treated as "admins exist".
func BootstrapOrBearer(authn Authenticator, users UserCounter) func(http.Handler) http.Handler {
	bearer := AdminBearer(authn)
	return func(next http.Handler) http.Handler {
		protected := bearer(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			has, err := users.HasUsers(r.Context())
			if err == nil && !has {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, authn Authenticator) (*auth.PublicUser, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, false
	}
	user, err := authn.Authenticate(r.Context(), strings.TrimSpace(token))
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// WithAdminUser attaches an authenticated admin to ctx.
func WithAdminUser(ctx context.Context, user auth.PublicUser) context.Context {
	return context.WithValue(ctx, adminUserKey, user)
}

// AdminUserFromContext returns the authenticated admin if present.
func AdminUserFromContext(ctx context.Context) (auth.PublicUser, bool) {
	user, ok := ctx.Value(adminUserKey).(auth.PublicUser)
	return user, ok
}
