// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/clearcast/playoutd/internal/config"
	"github.com/clearcast/playoutd/internal/logging"
)

// loginRateLimit caps the global rate of login attempts independently of
// httprate's per-IP request limiter: a distributed brute-force attempt
// spread across many source IPs would otherwise slip past a per-IP cap.
const loginRateLimit = 2 // attempts per second, burst below

// Claims are the JWT claims issued by the control channel's token endpoint.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 control-channel tokens.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager builds a JWTManager from SecurityConfig. Returns an error
// if JWTSecret is empty; config.Validate already enforces the minimum
// length and rejects placeholder values before this is ever called.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("control: JWT_SECRET is required when AUTH_MODE=jwt")
	}
	return &JWTManager{secret: []byte(cfg.JWTSecret), timeout: 24 * time.Hour}, nil
}

// GenerateToken signs a token for username, valid for the manager's timeout.
func (m *JWTManager) GenerateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and verifies tokenString, rejecting anything not
// signed with HMAC to block algorithm-confusion attacks.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("control: failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("control: invalid token claims")
	}
	return claims, nil
}

// Authenticator enforces SecurityConfig.AuthMode against incoming requests.
type Authenticator struct {
	mode         string
	username     string
	password     string
	jwtManager   *JWTManager
	loginLimiter *rate.Limiter
}

// NewAuthenticator builds an Authenticator from cfg. A jwt mode with no
// JWTManager (e.g. missing secret) is rejected at construction, matching
// config.Validate's refusal to accept that combination.
func NewAuthenticator(cfg *config.SecurityConfig) (*Authenticator, error) {
	a := &Authenticator{
		mode:         cfg.AuthMode,
		username:     cfg.AdminUsername,
		password:     cfg.AdminPassword,
		loginLimiter: rate.NewLimiter(rate.Limit(loginRateLimit), loginRateLimit*5),
	}
	if cfg.AuthMode == "jwt" {
		mgr, err := NewJWTManager(cfg)
		if err != nil {
			return nil, err
		}
		a.jwtManager = mgr
	}
	return a, nil
}

// Authenticate is http.HandlerFunc middleware gating every control-channel
// command endpoint. AUTH_MODE=none passes every request through unchecked;
// config.Validate refuses that mode in production.
func (a *Authenticator) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch a.mode {
		case "none", "":
			next(w, r)
		case "basic":
			user, pass, ok := r.BasicAuth()
			if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(a.username)) != 1 ||
				subtle.ConstantTimeCompare([]byte(pass), []byte(a.password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="playoutd"`)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
				return
			}
			next(w, r)
		case "jwt":
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			if _, err := a.jwtManager.ValidateToken(tokenString); err != nil {
				logging.Warn().Err(err).Msg("control auth rejected invalid token")
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			next(w, r)
		default:
			writeError(w, http.StatusInternalServerError, "AUTH_MISCONFIGURED", "unknown auth mode")
		}
	}
}

// Login handles POST /api/v1/auth/login for AUTH_MODE=jwt, issuing a token
// for the configured admin credentials.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request) {
	if a.mode != "jwt" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "jwt auth is not enabled")
		return
	}
	if !a.loginLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts")
		return
	}
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.username)) != 1 ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.password)) != 1 {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	token, err := a.jwtManager.GenerateToken(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}
