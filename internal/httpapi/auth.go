package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tajirpos/internal/domain"
	"tajirpos/internal/ledger"
)

// AuthManager issues and verifies access tokens. It is optional: when no
// secret is configured the API runs open and login is unavailable. Roles
// ride along in the token for display only; no route checks them.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	ledger   *ledger.Ledger
}

type accessClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, l *ledger.Ledger) *AuthManager {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		ledger:   l,
	}
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}

	users, err := a.ledger.ListUsers(ctx)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	for _, user := range users {
		if strings.ToLower(user.Username) != username {
			continue
		}
		if !user.Active {
			return domain.LoginResponse{}, errors.New("account is inactive")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			return domain.LoginResponse{}, errors.New("invalid credentials")
		}

		expiresAt := time.Now().UTC().Add(a.tokenTTL)
		token, err := a.sign(user.Username, user.Role, expiresAt)
		if err != nil {
			return domain.LoginResponse{}, err
		}
		return domain.LoginResponse{
			AccessToken: token,
			Role:        user.Role,
			ExpiresAt:   expiresAt.Format(time.RFC3339),
		}, nil
	}
	return domain.LoginResponse{}, errors.New("invalid credentials")
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &accessClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Username: sub, Role: claims.Role}, nil
}

func (a *AuthManager) sign(username, role string, expiresAt time.Time) (string, error) {
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "tajirpos",
		},
		Role: role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
