package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthMiddleware validates the Bearer token in the Authorization header
// and stores the subject as model.UserIDKey.
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "An Authorization header is required.", "", model.ErrUnauthorized))
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "The Authorization header is malformed.", "", model.ErrUnauthorized))
				return
			}

			claims := &model.JWTCustomClaims{}
			token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			}, jwt.WithIssuer(config.AppName))
			if err != nil || !token.Valid {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				code := "INVALID_TOKEN"
				if errors.Is(err, jwt.ErrTokenExpired) {
					code = "TOKEN_EXPIRED"
				}
				webutil.HandleError(w, logger, model.NewAppError(code, "The token is invalid.", "", model.ErrUnauthorized))
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				logger.Warn("JWT auth failed: Invalid subject format", "subject", claims.Subject, "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "The token is invalid.", "", model.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = WithLogger(ctx, logger.With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not read the user from the request.", "", model.ErrInternalServer)
	}
	return value, nil
}
