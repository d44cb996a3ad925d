package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dhamen.org/internal/authz"
	"dhamen.org/internal/claim"
	"dhamen.org/internal/obs"
)

type claimStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (a *API) handleClaimScoped(w http.ResponseWriter, r *http.Request) {
	if a.claims == nil {
		writeError(w, r, http.StatusServiceUnavailable, "claim store unavailable")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/claims/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		a.handleGetClaim(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status":
		a.handleClaimStatus(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleGetClaim(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.requireClaims(w, r)
	if !ok {
		return
	}
	if !a.ensureRoute(w, r, claims, authz.ResourceClaims) {
		return
	}

	rec, err := a.claims.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, claim.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "claim not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "claim lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleClaimStatus moves a claim through the lifecycle. The target status
// decides the required permission: approved needs approve, rejected needs
// reject, everything else needs update on claims.
func (a *API) handleClaimStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	claims, ok := a.requireClaims(w, r)
	if !ok {
		return
	}

	var req claimStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "status is required")
		return
	}

	to := claim.Status(req.Status)
	if !to.Known() {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	action := authz.ActionUpdate
	switch to {
	case claim.StatusApproved:
		action = authz.ActionApprove
	case claim.StatusRejected:
		action = authz.ActionReject
	}
	if !authz.HasPermission(claims.Role, authz.ResourceClaims, action) {
		obs.CountAuthFailure("forbidden")
		writeError(w, r, http.StatusForbidden, "insufficient permissions")
		return
	}

	rec, err := a.claims.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, claim.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "claim not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "claim lookup failed")
		return
	}

	if !claim.CanTransition(rec.Status, to) {
		writeError(w, r, http.StatusConflict,
			fmt.Sprintf("cannot move claim from %s to %s", rec.Status, to))
		return
	}

	if err := a.claims.UpdateStatus(r.Context(), id, rec.Status, to, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, claim.ErrStatusConflict):
			// Another writer moved the claim between our read and our write.
			writeError(w, r, http.StatusConflict, "claim status changed concurrently")
		case errors.Is(err, claim.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "claim not found")
		default:
			writeError(w, r, http.StatusInternalServerError, "status update failed")
		}
		return
	}

	a.audit(r.Context(), "claims.status_changed", "claim", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             id,
		"status":         to,
		"previousStatus": rec.Status,
	})
}
