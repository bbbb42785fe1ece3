package services

import (
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// TokenService holds the bearer token attached to remote requests. The
// token is optional; both content endpoints also answer unauthenticated.
type TokenService struct {
	context.DefaultService

	mu    sync.RWMutex
	token string
}

const TOKEN_SVC = "token_svc"

func NewTokenService(token string) *TokenService {
	return &TokenService{token: token}
}

func (svc TokenService) Id() string {
	return TOKEN_SVC
}

func (svc *TokenService) Configure(ctx *context.Context) error {
	if svc.token == "" {
		svc.token = os.Getenv("API_ACCESS_TOKEN")
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *TokenService) SetToken(token string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.token = token
}

// AccessToken returns the current bearer token, or "" when none is set or a
// JWT token is past its expiry. Opaque (non-JWT) tokens pass through as-is.
func (svc *TokenService) AccessToken() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if svc.token == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(svc.token, claims); err != nil {
		return svc.token
	}

	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil && exp.Before(time.Now()) {
		log.Warn("Access token expired, sending request unauthenticated")
		return ""
	}
	return svc.token
}
