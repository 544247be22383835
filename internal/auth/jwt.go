package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Token verification failures. Expired and invalid are kept distinct for
// logging; responses to the client stay generic.
var (
	ErrMissingToken = errors.New("missing auth token")
	ErrInvalidToken = errors.New("invalid auth token")
	ErrExpiredToken = errors.New("expired auth token")
)

// Claims defines the JWT claims structure. The "id" key matches what the
// web client's token was always built from.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// TokenManager issues and verifies session tokens. The signing secret is
// injected at construction; it is never read from the environment here.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager signing with the given secret.
// Tokens are valid for ttl after issuance.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a new signed token for the given user.
func (tm *TokenManager) Generate(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate parses and validates a token string, distinguishing expiry from
// any other failure.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware creates a middleware for protecting routes. The token travels
// in the Authorization header, either raw (as the original client sends it)
// or with a "Bearer " prefix.
func (tm *TokenManager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := strings.TrimSpace(r.Header.Get("Authorization"))
			tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")

			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "Access denied: No token provided")
				return
			}

			claims, err := tm.Validate(tokenStr)
			if err != nil {
				// Expired vs tampered matters in the logs only; the
				// response must not reveal which it was.
				log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Rejected auth token")
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// UserIDFrom extracts the authenticated user's ID from a request context.
func UserIDFrom(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
