package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type subjectContextKey struct{}

// ContextWithSubject stores the authenticated subject in context.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext extracts the authenticated subject from context.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey{}).(string)
	return subject
}

// RequireBearer rejects requests without a valid bearer token. The failure
// body is fixed JSON so clients never see a framework error page.
func RequireBearer(manager *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				unauthorized(w)
				return
			}

			claims, err := manager.Verify(token)
			if err != nil {
				logger.Warn("bearer token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				unauthorized(w)
				return
			}

			ctx := ContextWithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message": "Token is missing or invalid"}`))
}
