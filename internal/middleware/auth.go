package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"axiom-backend/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserLookup resolves the email carried in a token's subject.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type JWTAuth struct {
	Secret []byte
	Expiry time.Duration
	users  UserLookup
}

func NewJWTAuth(secret string, expiry time.Duration, users UserLookup) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), Expiry: expiry, users: users}
}

// GenerateAccessToken creates an HS256 JWT whose subject is the user's email.
func (j *JWTAuth) GenerateAccessToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"exp": now.Add(j.Expiry).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ParseSubject verifies tokenStr and returns its subject claim.
func (j *JWTAuth) ParseSubject(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// Middleware validates the bearer token, resolves its user and attaches the
// user ID to the request context.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized(w, "UNAUTHORIZED", "Not authenticated", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeUnauthorized(w, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		email, err := j.ParseSubject(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeUnauthorized(w, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeUnauthorized(w, "UNAUTHORIZED", "Could not validate credentials", r)
			}
			return
		}

		user, err := j.users.GetByEmail(r.Context(), email)
		if err != nil {
			writeUnauthorized(w, "UNAUTHORIZED", "Could not validate credentials", r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts user_id from request context
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

func writeUnauthorized(w http.ResponseWriter, code, message string, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, code, message, r)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(RequestIDHeader),
		},
	})
}
