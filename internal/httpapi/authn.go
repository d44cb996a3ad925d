package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"dhamen.org/internal/auth"
	"dhamen.org/internal/authz"
	"dhamen.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

// withAuth authenticates every request outside the public surface. The
// verified claims and the raw token ride the context from here on.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.gateway == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			obs.CountAuthFailure("unauthorized")
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.gateway.Authenticate(token)
		if err != nil {
			obs.CountAuthFailure("unauthorized")
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := auth.ContextWithClaims(r.Context(), claims)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireClaims pulls the verified claims off the context; a request that got
// past withAuth without them is answered 401 here.
func (a *API) requireClaims(w http.ResponseWriter, r *http.Request) (auth.AccessClaims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		obs.CountAuthFailure("unauthorized")
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.AccessClaims{}, false
	}
	return claims, true
}

// ensureRoute checks the caller's role against the permission matrix for the
// request method on resource. Denials answer 403 and report false.
func (a *API) ensureRoute(w http.ResponseWriter, r *http.Request, claims auth.AccessClaims, resource authz.Resource) bool {
	if authz.CanAccessRoute(claims.Role, resource, r.Method) {
		return true
	}
	obs.CountAuthFailure("forbidden")
	writeError(w, r, http.StatusForbidden, "insufficient permissions")
	return false
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
