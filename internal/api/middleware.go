package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/auth"
)

// RequestIDMiddleware keeps an incoming X-Request-ID or mints one. The id is
// stored where chi's middleware.GetReqID finds it, so outbound clients can
// forward it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
		w.Header().Set(middleware.RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs method, path, status, duration and request id.
func LoggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if status >= http.StatusInternalServerError {
				log.Error("request", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}

// Authenticate requires a bearer token the verifier accepts. Handlers behind
// it take the caller's identity from the verified claims only.
func Authenticate(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "missing_token", "authorization bearer token is required")
				return
			}

			claims, err := v.Verify(r.Context(), strings.TrimSpace(token))
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "token_expired", auth.ErrTokenExpired.Error())
				return
			case errors.Is(err, auth.ErrVerifierUnavailable):
				writeError(w, http.StatusBadGateway, "auth_unavailable", "could not verify the access token, please retry")
				return
			default:
				writeError(w, http.StatusUnauthorized, "invalid_token", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireUserType rejects users of any other type with 403.
func RequireUserType(types ...auth.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing_token", "authorization bearer token is required")
				return
			}
			if !slices.Contains(types, claims.UserType) {
				writeError(w, http.StatusForbidden, "forbidden", "this area is not available for "+string(claims.UserType))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mustClaims(r *http.Request) auth.Claims {
	c, _ := auth.FromContext(r.Context())
	return c
}
