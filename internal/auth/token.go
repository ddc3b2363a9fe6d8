// Package auth issues and verifies the access/refresh JWT pair and hashes
// passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/account-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("token signing secret is not configured")
	ErrInvalidTTL    = errors.New("token ttl must be positive")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
)

type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// AccessClaims travel in every access token and identify the caller without
// a store lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// RefreshClaims carry only the user id.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (i *TokenIssuer) IssueAccessToken(claims AccessClaims) (string, error) {
	if i.cfg.AccessSecret == "" {
		return "", ErrMissingSecret
	}
	if i.cfg.AccessTTL <= 0 {
		return "", ErrInvalidTTL
	}
	claims.RegisteredClaims = i.registered(i.cfg.AccessTTL)
	return sign(claims, i.cfg.AccessSecret)
}

func (i *TokenIssuer) IssueRefreshToken(userID uuid.UUID) (string, error) {
	if i.cfg.RefreshSecret == "" {
		return "", ErrMissingSecret
	}
	if i.cfg.RefreshTTL <= 0 {
		return "", ErrInvalidTTL
	}
	claims := RefreshClaims{
		RegisteredClaims: i.registered(i.cfg.RefreshTTL),
		UserID:           userID.String(),
	}
	return sign(claims, i.cfg.RefreshSecret)
}

// IssuePair mints a fresh access and refresh token for user.
func (i *TokenIssuer) IssuePair(user *domain.User) (*TokenPair, error) {
	access, err := i.IssueAccessToken(AccessClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Fullname: user.Fullname,
		Email:    user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := i.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// registered fills the standard claims. The random ID keeps two tokens minted
// within the same second distinct.
func (i *TokenIssuer) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type TokenVerifier struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenVerifier(cfg TokenConfig) *TokenVerifier {
	return &TokenVerifier{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
	}
}

func (v *TokenVerifier) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(tokenString, claims, v.accessSecret); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (v *TokenVerifier) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(tokenString, claims, v.refreshSecret); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func parse(tokenString string, claims jwt.Claims, secret []byte) error {
	if tokenString == "" || len(secret) == 0 {
		return ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// UserUUID parses the user id of verified claims.
func (c *AccessClaims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

func (c *RefreshClaims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}
