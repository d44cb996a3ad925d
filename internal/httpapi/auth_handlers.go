package httpapi

import (
	"errors"
	"net/http"

	"dhamen.org/internal/auth"
	"dhamen.org/internal/authz"
	"dhamen.org/internal/obs"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := a.gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			obs.CountAuthFailure("unauthorized")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	if result.RequiresMFA {
		a.audit(r.Context(), "auth.mfa_challenge", "user", "")
		writeJSON(w, http.StatusOK, result)
		return
	}

	a.audit(r.Context(), "auth.login", "user", result.User.ID)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := a.gateway.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			obs.CountAuthFailure("unauthorized")
			writeError(w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, ok := a.requireClaims(w, r)
	if !ok {
		return
	}

	if err := a.gateway.Logout(r.Context(), claims.Subject); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}

	a.audit(r.Context(), "auth.logout", "user", claims.Subject)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.requireClaims(w, r)
	if !ok {
		return
	}

	user, err := a.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			// Token outlived the account.
			obs.CountAuthFailure("unauthorized")
			writeError(w, r, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

func (a *API) handlePermissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.requireClaims(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"role":        claims.Role,
		"permissions": authz.PermissionsFor(claims.Role),
	})
}
