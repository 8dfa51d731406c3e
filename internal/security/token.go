package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"portal/internal/rbac"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or type checks.
var ErrInvalidToken = errors.New("invalid token")

// Token is a signed token string with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims carried by portal tokens. Role is only set on access tokens.
type Claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService issues and validates HS256 access and refresh tokens.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenService returns a TokenService. An empty refresh secret reuses the access secret.
func NewTokenService(cfg TokenConfig) *TokenService {
	if len(cfg.RefreshSecret) == 0 {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

// RefreshTTL is the lifetime of refresh tokens, used for the stored expiry.
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// IssueAccess signs a short-lived token embedding the user id and role.
func (s *TokenService) IssueAccess(userID uuid.UUID, role rbac.Role) (Token, error) {
	return s.sign(s.cfg.AccessSecret, s.cfg.AccessTTL, Claims{
		Role: string(role),
		Type: tokenTypeAccess,
	}, userID)
}

// IssueRefresh signs a long-lived token embedding only the user id and a unique token id.
func (s *TokenService) IssueRefresh(userID uuid.UUID) (Token, error) {
	return s.sign(s.cfg.RefreshSecret, s.cfg.RefreshTTL, Claims{
		Type: tokenTypeRefresh,
	}, userID)
}

func (s *TokenService) sign(secret []byte, ttl time.Duration, claims Claims, userID uuid.UUID) (Token, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.cfg.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", claims.Type, err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// ParseAccess validates an access token and returns the principal it carries.
// An unresolvable role claim falls back to rbac.DefaultRole.
func (s *TokenService) ParseAccess(raw string) (*rbac.Principal, error) {
	claims, err := s.parse(raw, s.cfg.AccessSecret, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role := rbac.Role(claims.Role)
	if !role.Valid() {
		role = rbac.DefaultRole
	}
	return &rbac.Principal{UserID: userID, Role: role}, nil
}

// ParseRefresh validates a refresh token's signature and expiry and returns its user id.
func (s *TokenService) ParseRefresh(raw string) (uuid.UUID, error) {
	claims, err := s.parse(raw, s.cfg.RefreshSecret, tokenTypeRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *TokenService) parse(raw string, secret []byte, typ string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest stored in place of a raw refresh token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
