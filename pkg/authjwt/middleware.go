package authjwt

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
)

type claimsKey struct{}

// ClaimsFrom returns the claims RequireRole stored on ctx.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// WithClaims stores claims on ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireRole accepts requests with a valid bearer token whose role is one of
// roles. Missing or invalid tokens get 401, other roles 403.
func RequireRole(p Provider, logger *slog.Logger, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := p.ValidateToken(raw)
			if err != nil {
				logger.WarnContext(ctx, "Rejected bearer token", attr.ExtractCorrelationID(ctx), attr.Error(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				logger.WarnContext(ctx, "Role not permitted",
					attr.ExtractCorrelationID(ctx),
					attr.String("subject", claims.Subject),
					attr.String("role", string(claims.Role)),
				)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
