package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const ProfileIDKey contextKey = "profile_id"

func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, ok := profileIDFromRequest(r, jwtSecret)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`))
				return
			}

			ctx := context.WithValue(r.Context(), ProfileIDKey, profileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the viewer's profile ID when a valid token is
// present and lets the request through anonymously otherwise. Public pages
// use it so an authenticated viewer still gets personalized context.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if profileID, ok := profileIDFromRequest(r, jwtSecret); ok {
				r = r.WithContext(context.WithValue(r.Context(), ProfileIDKey, profileID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func profileIDFromRequest(r *http.Request, jwtSecret string) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return uuid.Nil, false
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}

	sub, _ := claims.GetSubject()
	profileID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}

	return profileID, true
}

// GetProfileID extracts the acting profile ID from request context.
func GetProfileID(ctx context.Context) uuid.UUID {
	return ctx.Value(ProfileIDKey).(uuid.UUID)
}

// ViewerID returns the profile ID when the request carries one.
func ViewerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ProfileIDKey).(uuid.UUID)
	return id, ok
}
