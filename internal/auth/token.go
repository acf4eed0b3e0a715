// Package auth issues and verifies the bearer tokens that carry a caller identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"exam-grading-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "exam-grading-service"

// Claims is the token payload. Subject holds the user id.
type Claims struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key string, ttl time.Duration) (*Signer, error) {
	if len(key) < 16 {
		return nil, fmt.Errorf("signing key must be at least 16 bytes")
	}
	return &Signer{key: []byte(key), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for user.
func (s *Signer) Issue(user domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		Name:  user.DisplayName,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.FormatInt(user.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Verify checks the signature, issuer and expiry and returns the identity.
func (s *Signer) Verify(raw string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errOr(err))
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: bad subject %q", domain.ErrUnauthenticated, claims.Subject)
	}
	return domain.Identity{UserID: id, Name: claims.Name, Admin: claims.Admin}, nil
}

func errOr(err error) error {
	if err == nil {
		return errors.New("invalid token")
	}
	return err
}

type identityKey struct{}

// WithIdentity attaches the verified caller to ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by WithIdentity.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
