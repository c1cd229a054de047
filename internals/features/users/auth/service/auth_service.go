package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	authRepo "bookshelf_backend/internals/features/users/auth/repository"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	"bookshelf_backend/internals/helpers/apperr"
	helperAuth "bookshelf_backend/internals/helpers/auth"
)

const tokenIssuer = "bookshelf_backend"

// ErrTokensDisabled is returned by IssueToken when no JWT secret is set.
var ErrTokensDisabled = errors.New("token issuing is disabled")

type AuthService struct {
	Users   userRepo.Repository
	Revoked authRepo.RevocationStore // optional; nil disables logout
	Secret  []byte
	TTL     time.Duration
	Now     func() time.Time
}

func NewAuthService(users userRepo.Repository, revoked authRepo.RevocationStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{Users: users, Revoked: revoked, Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Authenticate checks username and password against the stored bcrypt hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (helperAuth.Principal, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return helperAuth.Principal{}, fmt.Errorf("%q: %w", username, apperr.ErrUserNotFound)
	}
	if err != nil {
		return helperAuth.Principal{}, err
	}
	if authHelper.CheckPasswordHash(u.Password, password) != nil {
		return helperAuth.Principal{}, apperr.ErrBadCredentials
	}
	return helperAuth.Principal{Username: u.Username}, nil
}

// IssueToken signs an HS256 token whose subject is the username.
func (s *AuthService) IssueToken(p helperAuth.Principal) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, ErrTokensDisabled
	}
	now := s.now()
	exp := now.Add(s.TTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   p.Username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken verifies a bearer token and returns its principal. Revoked
// tokens are rejected.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (helperAuth.Principal, error) {
	claims, err := s.verify(raw)
	if err != nil {
		return helperAuth.Principal{}, err
	}
	if s.Revoked != nil && claims.ID != "" {
		revoked, err := s.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return helperAuth.Principal{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return helperAuth.Principal{}, fmt.Errorf("%w: token revoked", apperr.ErrUnauthorized)
		}
	}
	return helperAuth.Principal{Username: claims.Subject}, nil
}

// Revoke invalidates a still valid token until it expires.
func (s *AuthService) Revoke(ctx context.Context, raw string) error {
	if s.Revoked == nil {
		return ErrTokensDisabled
	}
	claims, err := s.verify(raw)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("%w: token cannot be revoked", apperr.ErrUnauthorized)
	}
	return s.Revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) verify(raw string) (*jwt.RegisteredClaims, error) {
	if len(s.Secret) == 0 {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, ErrTokensDisabled)
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	tok, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: invalid token: %v", apperr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token without subject", apperr.ErrUnauthorized)
	}
	return claims, nil
}
