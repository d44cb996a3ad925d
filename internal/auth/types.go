package auth

import (
	"time"

	"dhamen.org/internal/authz"
)

// User is the account record the gateway authenticates against.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         authz.Role
	ProviderID   string
	InsurerID    string
	FirstName    string
	LastName     string
	Phone        string
	MFAEnabled   bool
	IsActive     bool
	LastLoginAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the caller-visible projection of a user. It never carries
// the password hash or the MFA secret.
type PublicUser struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Role       authz.Role `json:"role"`
	ProviderID string     `json:"providerId,omitempty"`
	InsurerID  string     `json:"insurerId,omitempty"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Phone      string     `json:"phone,omitempty"`
	MFAEnabled bool       `json:"mfaEnabled"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Public returns the caller-visible projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		ProviderID: u.ProviderID,
		InsurerID:  u.InsurerID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		MFAEnabled: u.MFAEnabled,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// TokenPair is an access/refresh token pair as returned to the caller.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LoginResult is the outcome of a successful credential check. When the
// account has a second factor enabled only MFAToken is populated; the
// refresh token is withheld until the second factor is verified elsewhere.
type LoginResult struct {
	RequiresMFA bool        `json:"requiresMfa"`
	MFAToken    string      `json:"mfaToken,omitempty"`
	Tokens      *TokenPair  `json:"tokens,omitempty"`
	User        *PublicUser `json:"user,omitempty"`
}
