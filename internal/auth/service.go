package auth

import (
	"context"
	"errors"

	"github.com/atabek/storefront/internal/hash"
	"github.com/atabek/storefront/internal/models"
	"github.com/atabek/storefront/internal/repo"
	"github.com/atabek/storefront/internal/tokens"
)

var (
	// ErrInvalidCredentials deliberately covers both unknown username and
	// wrong password, so the login endpoint cannot be used to enumerate
	// usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrRevoked         = errors.New("token revoked")
	ErrExpired         = tokens.ErrExpired
	ErrMalformed       = tokens.ErrMalformed
	ErrUnknownSubject  = errors.New("token subject unknown")
	ErrAccountDisabled = errors.New("account disabled")
)

// Service answers "who is calling, what can they do" for the rest of the
// system. All collaborators are injected at construction.
type Service struct {
	Users     *repo.GormRepo
	Issuer    *tokens.Issuer
	Blacklist *Blacklist
}

func NewService(users *repo.GormRepo, issuer *tokens.Issuer, blacklist *Blacklist) *Service {
	return &Service{Users: users, Issuer: issuer, Blacklist: blacklist}
}

// Authenticate resolves a username/password pair to an identity.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Issue(username string) (string, error) {
	return s.Issuer.Issue(username)
}

// Validate admits or rejects a presented token. The checks run in a fixed
// order and the first failing one decides the caller-visible reason:
// revocation, then signature/expiry, then subject resolution.
func (s *Service) Validate(ctx context.Context, tokenStr string) (*models.User, error) {
	if s.Blacklist.IsRevoked(tokenStr) {
		return nil, ErrRevoked
	}
	claims, err := s.Issuer.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	user, err := s.Users.FindUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}
	return user, nil
}

// ValidateActive is Validate plus the disabled-flag check.
func (s *Service) ValidateActive(ctx context.Context, tokenStr string) (*models.User, error) {
	user, err := s.Validate(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// Refresh reissues a token with a fresh expiry without revoking the one
// presented. Sliding-session behavior carried over from the original
// deployment: both tokens stay independently valid.
func (s *Service) Refresh(tokenStr string) (string, error) {
	return s.Issuer.Reissue(tokenStr)
}

func (s *Service) Logout(tokenStr string) {
	s.Blacklist.Revoke(tokenStr)
}

// IsSuperuser gates privileged mutations. A disabled superuser has no
// privileges.
func IsSuperuser(user *models.User) bool {
	return user.IsSuperuser && !user.Disabled
}
