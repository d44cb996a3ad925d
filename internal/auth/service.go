package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
	defaultMFATTL     = 5 * time.Minute

	refreshKeyPrefix = "refresh:"
)

// Service is the authentication gateway. It orchestrates login, refresh and
// logout over the token codec, the password hasher, the user store and the
// revocation store. It is the only component here with side effects.
type Service struct {
	users    UserStore
	sessions RevocationStore
	tokens   *Tokens
	hasher   Hasher

	accessTTL  time.Duration
	refreshTTL time.Duration
	mfaTTL     time.Duration
	now        func() time.Time
}

// ServiceOption configures the gateway.
type ServiceOption func(*Service) error

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime; the revocation store
// entry expires on the same schedule.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// WithMFATokenTTL configures the lifetime of the limited-purpose token
// issued when an account still owes a second factor.
func WithMFATokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.mfaTTL = ttl
		}
		return nil
	}
}

// WithHasher overrides the password hasher, e.g. to enable the legacy seed
// data shim in development.
func WithHasher(h Hasher) ServiceOption {
	return func(s *Service) error {
		s.hasher = h
		return nil
	}
}

// WithClock overrides the time source for the gateway and its token codec.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
			s.tokens.now = fn
		}
		return nil
	}
}

// NewService builds the gateway. The signing secret is required; a service
// without one must not start.
func NewService(users UserStore, sessions RevocationStore, secret string, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if sessions == nil {
		return nil, errors.New("auth: revocation store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     NewTokens([]byte(secret)),
		hasher:     NewHasher(),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		mfaTTL:     defaultMFATTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Login verifies credentials and issues tokens. Unknown user, inactive
// account and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, err
	}
	if !user.IsActive {
		return LoginResult{}, ErrUnauthorized
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return LoginResult{}, ErrUnauthorized
	}

	if user.MFAEnabled {
		// Limited-purpose token carrying only subject and role; refresh
		// issuance waits until the second factor is verified out of band.
		mfaToken, err := s.tokens.SignAccess(AccessClaims{Subject: user.ID, Role: user.Role}, s.mfaTTL)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{RequiresMFA: true, MFAToken: mfaToken}, nil
	}

	pair, err := s.mintPair(ctx, user)
	if err != nil {
		return LoginResult{}, err
	}
	// Last-login bookkeeping must not fail an otherwise successful login.
	_ = s.users.RecordLogin(ctx, user.ID, s.now().UTC())

	public := user.Public()
	return LoginResult{Tokens: &pair, User: &public}, nil
}

// Refresh exchanges a refresh token for a fresh access/refresh pair and
// rotates the revocation store entry. A token superseded by a later rotation
// fails here even if its own signature and expiry still hold.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}

	current, err := s.sessions.Get(ctx, refreshKey(claims.Subject))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if current != refreshToken {
		return TokenPair{}, ErrUnauthorized
	}

	// Re-read the user so role or tenant changes since login take effect in
	// the new access token.
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, ErrUnauthorized
	}

	return s.mintPair(ctx, user)
}

// Logout discards the subject's refresh token. Logging out twice is fine.
func (s *Service) Logout(ctx context.Context, subject string) error {
	return s.sessions.Delete(ctx, refreshKey(subject))
}

// Authenticate verifies an access token for a protected request.
func (s *Service) Authenticate(token string) (AccessClaims, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// mintPair issues both tokens and overwrites the subject's revocation store
// entry. The write is last-writer-wins: two refreshes racing for the same
// subject both succeed, and the loser's token dies on its next use.
func (s *Service) mintPair(ctx context.Context, user *User) (TokenPair, error) {
	access, err := s.tokens.SignAccess(AccessClaims{
		Subject:    user.ID,
		Role:       user.Role,
		ProviderID: user.ProviderID,
		InsurerID:  user.InsurerID,
	}, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.SignRefresh(user.ID, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Put(ctx, refreshKey(user.ID), refresh, s.refreshTTL); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

func refreshKey(subject string) string {
	return refreshKeyPrefix + subject
}
