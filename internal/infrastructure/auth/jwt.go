package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart inside the claims
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMissingRole        = errors.New("missing role in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// Claims are the operator claims carried by access and refresh tokens.
// RefreshCount counts the rotations that led to a refresh token.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is what login and refresh hand to the admin panel
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Operator identifies who a token pair is issued to
type Operator struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

type tokenKey struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 operator tokens. Access and refresh
// tokens use separate secrets unless no refresh secret is configured.
type JWTService struct {
	keys            map[TokenType]tokenKey
	issuer          string
	maxRefreshCount int
	now             func() time.Time
}

// NewJWTService creates a JWT service from config
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		keys: map[TokenType]tokenKey{
			TokenTypeAccess:  {secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		},
		issuer:          cfg.Issuer,
		maxRefreshCount: cfg.MaxRefreshCount,
		now:             time.Now,
	}
}

// GenerateTokenPair issues a fresh access and refresh token
func (s *JWTService) GenerateTokenPair(op Operator) (*TokenPair, error) {
	return s.issue(op, 0)
}

func (s *JWTService) issue(op Operator, refreshCount int) (*TokenPair, error) {
	now := s.now()
	pair := &TokenPair{TokenType: "Bearer"}

	var err error
	if pair.AccessToken, pair.AccessTokenExpiresAt, err = s.sign(op, TokenTypeAccess, 0, now); err != nil {
		return nil, err
	}
	if pair.RefreshToken, pair.RefreshTokenExpiresAt, err = s.sign(op, TokenTypeRefresh, refreshCount, now); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *JWTService) sign(op Operator, tokenType TokenType, refreshCount int, now time.Time) (string, time.Time, error) {
	key := s.keys[tokenType]
	expiresAt := now.Add(key.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   op.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:       op.UserID.String(),
		Username:     op.Username,
		Role:         op.Role,
		TokenType:    tokenType,
		RefreshCount: refreshCount,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken verifies an access token and returns its claims
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeRefresh)
}

func (s *JWTService) parse(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.keys[want].secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	switch {
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrMissingUserID
	case claims.Role == "":
		return nil, ErrMissingRole
	}
	return claims, nil
}

// RefreshTokenPair rotates tokens using a valid refresh token. A non-empty
// currentRole replaces the role in the old token so demotions apply on refresh.
func (s *JWTService) RefreshTokenPair(refreshToken, currentRole string) (*TokenPair, *Claims, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, nil, ErrMaxRefreshExceeded
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, nil, ErrInvalidClaims
	}
	op := Operator{UserID: userID, Username: claims.Username, Role: claims.Role}
	if currentRole != "" {
		op.Role = currentRole
	}

	pair, err := s.issue(op, claims.RefreshCount+1)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// GetRefreshTokenExpiration returns the refresh token lifetime, which is
// also how long a user-wide revocation has to live
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.keys[TokenTypeRefresh].ttl
}

// GetUserUUID parses the user id claim
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// HasRole reports whether the claims carry one of roles
func (c *Claims) HasRole(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}

// GetIssuedAtTime returns iat, or the zero time when absent
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL returns how long the token stays valid, never negative
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
