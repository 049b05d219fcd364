package schedulerouter

import (
	"log/slog"
	"net/http"
	"time"

	schedulehandlers "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/handlers"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/httpmw"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// SeasonsPrefix is where the season routes are mounted.
const SeasonsPrefix = "/api/schedule/seasons"

// HTTPConfig configures the admin API middleware.
type HTTPConfig struct {
	AllowedOrigins []string
	// RateLimit is requests per second per client address.
	RateLimit float64
	RateBurst int
	// RequestTimeout bounds synchronous builds.
	RequestTimeout time.Duration
}

// NewHTTPRouter builds the admin API. Season routes require an admin or
// director token; /healthz is open.
func NewHTTPRouter(
	cfg HTTPConfig,
	handlers *schedulehandlers.ScheduleHandlers,
	tokens authjwt.Provider,
	health http.HandlerFunc,
	logger *slog.Logger,
) chi.Router {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		httpmw.Correlation,
		middleware.RealIP,
		middleware.Recoverer,
		httpmw.CORS(cfg.AllowedOrigins),
	)

	r.Get("/healthz", health)

	r.Route(SeasonsPrefix, func(r chi.Router) {
		r.Use(
			httpmw.RateLimit(httpmw.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)),
			authjwt.RequireRole(tokens, logger, authjwt.RoleAdmin, authjwt.RoleDirector),
			middleware.Timeout(cfg.RequestTimeout),
		)
		handlers.RegisterRoutes(r)
	})

	return r
}
