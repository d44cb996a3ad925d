// Package httpapi is the HTTP layer of the dhamen API: routing, middleware
// and the JSON wire conventions shared by every handler.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"dhamen.org/internal/audit"
	"dhamen.org/internal/auth"
	"dhamen.org/internal/claim"
	"dhamen.org/internal/obs"
)

// ReadyProbe reports whether the service can take traffic (e.g. db ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// ClaimStore is the claim persistence the status endpoints work against.
type ClaimStore interface {
	Get(ctx context.Context, id string) (*claim.Claim, error)
	UpdateStatus(ctx context.Context, id string, from, to claim.Status, at time.Time) error
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	gateway    *auth.Service
	users      auth.UserStore
	claims     ClaimStore
	trail      *audit.Trail
	validate   *validator.Validate
	readyProbe ReadyProbe
	version    string

	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

func New(rp ReadyProbe, version string, gateway *auth.Service, users auth.UserStore, claims ClaimStore, trail *audit.Trail) *API {
	a := &API{
		mux:        http.NewServeMux(),
		gateway:    gateway,
		users:      users,
		claims:     claims,
		trail:      trail,
		validate:   validator.New(),
		readyProbe: rp,
		version:    version,

		maxBodyBytes: 1 << 20,
		rateBurst:    20,
		ratePerSec:   10,
	}
	if a.trail == nil {
		a.trail = audit.NewTrail(nil)
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth gateway
	a.mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/api/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/api/v1/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/v1/auth/permissions", a.handlePermissions)

	// claims
	a.mux.HandleFunc("/api/v1/claims/", a.handleClaimScoped)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the full middleware chain around the mux. RequestID sits
// outermost so every later layer, including the rate limiter's error body,
// sees the request id.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = obs.Instrument(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	return RequestID(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dhamen-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "dhamen-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// audit records an audit event for the current request; failures only log.
func (a *API) audit(ctx context.Context, action, entityType, entityID string) {
	_ = a.trail.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	})
}
