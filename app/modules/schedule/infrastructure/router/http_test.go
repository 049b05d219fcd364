package schedulerouter

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	schedulehandlers "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/handlers"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/httpmw"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewHTTPRouter(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	tokens, err := authjwt.NewProvider("router-test-secret-0123456789abcdef")
	require.NoError(t, err)

	// A nil service is never reached: every request here is rejected or
	// answered before the handlers run.
	handlers := schedulehandlers.NewScheduleHandlers(nil, nil, nil, nil, logger, noop.NewTracerProvider().Tracer("test"), metrics.NewNoop())
	health := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	r := NewHTTPRouter(HTTPConfig{AllowedOrigins: []string{"https://admin.example.org"}}, handlers, tokens, health, logger)

	token := func(role authjwt.Role) string {
		tok, err := tokens.GenerateToken("user", role, time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name     string
		method   string
		path     string
		auth     string
		origin   string
		wantCode int
	}{
		{name: "health is open", method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: SeasonsPrefix + "/" + uuid.NewString() + "/qa", wantCode: http.StatusUnauthorized},
		{name: "viewer forbidden", method: http.MethodGet, path: SeasonsPrefix + "/" + uuid.NewString() + "/qa", auth: token(authjwt.RoleViewer), wantCode: http.StatusForbidden},
		{name: "director reaches handler", method: http.MethodGet, path: SeasonsPrefix + "/not-a-uuid/qa", auth: token(authjwt.RoleDirector), wantCode: http.StatusBadRequest},
		{name: "preflight", method: http.MethodOptions, path: SeasonsPrefix + "/x/qa", origin: "https://admin.example.org", wantCode: http.StatusNoContent},
		{name: "unknown route", method: http.MethodGet, path: "/api/other", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(httpmw.CorrelationHeader))
		})
	}
}
