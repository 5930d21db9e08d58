package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	OrganizationID      string     `json:"org,omitempty"`
	Role                model.Role `json:"role,omitempty"`
	AssignedWarehouseID string     `json:"wh,omitempty"`
	IsSuperuser         bool       `json:"su,omitempty"`
	TokenType           string     `json:"typ"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) Issue(u *model.User) (*TokenPair, error) {
	now := m.now()
	access, err := m.sign(u, TokenAccess, now, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(u, TokenRefresh, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: now.Add(m.accessTTL)}, nil
}

func (m *TokenManager) sign(u *model.User, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
		TokenType:   typ,
	}
	if u.OrganizationID != nil {
		claims.OrganizationID = *u.OrganizationID
	}
	if u.AssignedWarehouseID != nil {
		claims.AssignedWarehouseID = *u.AssignedWarehouseID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a token of the expected type and returns its claims.
func (m *TokenManager) Parse(token, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return claims, nil
}

// Authenticate turns an access token into a request context carrying the
// Principal. Its signature matches middleware.Authenticator.
func (m *TokenManager) Authenticate(ctx context.Context, token string) (context.Context, error) {
	claims, err := m.Parse(token, TokenAccess)
	if err != nil {
		return ctx, err
	}
	return WithPrincipal(ctx, &Principal{
		UserID:              claims.Subject,
		OrganizationID:      claims.OrganizationID,
		Role:                claims.Role,
		AssignedWarehouseID: claims.AssignedWarehouseID,
		IsSuperuser:         claims.IsSuperuser,
	}), nil
}
