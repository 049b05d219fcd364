package schedulehandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/dateparse"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxBodyBytes    = 1 << 20
)

// RegisterRoutes mounts the season routes on r. r is expected to be mounted
// at the seasons prefix.
func (h *ScheduleHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/{seasonID}", func(r chi.Router) {
		r.Get("/sources", h.instrument("ListSources", h.HandleListSources))
		r.Get("/analysis", h.instrument("Analyze", h.HandleAnalyze))
		r.Post("/build", h.instrument("Build", h.HandleBuild))
		r.Delete("/games", h.instrument("Undo", h.HandleUndo))
		r.Get("/qa", h.instrument("Validate", h.HandleValidate))
		r.Get("/qa/export.xlsx", h.instrument("ExportQa", h.HandleExportQa))
		r.Get("/qa/games-per-date.png", h.instrument("GamesPerDateChart", h.HandleGamesPerDateChart))
	})
}

const httpService = "ScheduleHTTP"

// instrument records a span and operation metrics per request. Responses of
// 500 and above count as failures.
func (h *ScheduleHandlers) instrument(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if h.tracer != nil {
			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil {
				route = rctx.RoutePattern()
			}
			var span trace.Span
			ctx, span = h.tracer.Start(ctx, "http."+operation, trace.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("correlation_id", attr.CorrelationIDFrom(ctx)),
			))
			defer span.End()
		}
		if h.metrics == nil {
			next(w, r.WithContext(ctx))
			return
		}

		start := time.Now()
		h.metrics.RecordOperationAttempt(ctx, operation, httpService)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r.WithContext(ctx))
		if ww.Status() >= http.StatusInternalServerError {
			h.metrics.RecordOperationFailure(ctx, operation, httpService)
		} else {
			h.metrics.RecordOperationSuccess(ctx, operation, httpService)
		}
		h.metrics.RecordOperationDuration(ctx, operation, httpService, time.Since(start))
	}
}

// buildRequestBody is the POST /build payload. StartDate accepts ISO dates
// and phrases such as "next saturday".
type buildRequestBody struct {
	SourceSeasonID       uuid.UUID                               `json:"sourceSeasonId"`
	SkipDivisionIDs      []uuid.UUID                             `json:"skipDivisionIds"`
	Resolutions          []scheduledomain.SizeMismatchResolution `json:"resolutions"`
	IncludeBracketGames  bool                                    `json:"includeBracketGames"`
	SkipAlreadyScheduled bool                                    `json:"skipAlreadyScheduled"`
	StartDate            string                                  `json:"startDate"`
}

func (h *ScheduleHandlers) HandleListSources(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	sources, err := h.service.ListSourceCandidates(r.Context(), seasonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *ScheduleHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	sourceID, err := uuid.Parse(r.URL.Query().Get("source"))
	if err != nil {
		http.Error(w, "invalid source season id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Analyze(r.Context(), seasonID, sourceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleBuild builds synchronously under the season lock. With ?async=true
// the build is queued and 202 is returned instead.
func (h *ScheduleHandlers) HandleBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}

	var body buildRequestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	startDate, err := h.parseStartDate(ctx, seasonID, body.StartDate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req := scheduledomain.AutoBuildRequest{
		SourceSeasonID:       body.SourceSeasonID,
		SkipDivisionIDs:      body.SkipDivisionIDs,
		Resolutions:          body.Resolutions,
		IncludeBracketGames:  body.IncludeBracketGames,
		SkipAlreadyScheduled: body.SkipAlreadyScheduled,
		StartDate:            startDate,
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		h.enqueueBuild(w, r, seasonID, req)
		return
	}

	var result *scheduledomain.AutoBuildResult
	err = scheduleservice.WithBuildLock(ctx, h.lock, h.logger, seasonID, func(ctx context.Context) error {
		var err error
		result, err = h.service.Build(ctx, seasonID, req)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseStartDate reads the requested start date as a calendar day in the
// season's time zone.
func (h *ScheduleHandlers) parseStartDate(ctx context.Context, seasonID uuid.UUID, input string) (*time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	loc, err := h.service.SeasonLocation(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return h.dates.ParseOptionalDate(input, loc)
}

func (h *ScheduleHandlers) enqueueBuild(w http.ResponseWriter, r *http.Request, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) {
	if h.queue == nil {
		http.Error(w, errQueueUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	var requestedBy string
	if claims, ok := authjwt.ClaimsFrom(r.Context()); ok {
		requestedBy = claims.Subject
	}
	res, err := h.queue.EnqueueAutoBuild(r.Context(), seasonID, req, requestedBy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *ScheduleHandlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	var deleted int
	err := scheduleservice.WithBuildLock(r.Context(), h.lock, h.logger, seasonID, func(ctx context.Context) error {
		var err error
		deleted, err = h.service.Undo(ctx, seasonID)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *ScheduleHandlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	qa, err := h.service.Validate(r.Context(), seasonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qa)
}

func (h *ScheduleHandlers) HandleExportQa(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	book, err := h.service.ExportQaWorkbook(r.Context(), seasonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="qa-%s.xlsx"`, seasonID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(book)
}

func (h *ScheduleHandlers) HandleGamesPerDateChart(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	png, err := h.service.RenderGamesPerDateChart(r.Context(), seasonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *ScheduleHandlers) seasonParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		http.Error(w, "invalid season id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case scheduleservice.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scheduleservice.ErrSeasonNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduleservice.ErrBuildInProgress):
		return http.StatusConflict
	case errors.Is(err, dateparse.ErrUnrecognized):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		// nginx's "client closed request".
		return 499
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *ScheduleHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "Request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		msg = http.StatusText(status)
	} else {
		h.logger.InfoContext(ctx, "Request rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("path", r.URL.Path),
			attr.Int("status", status),
			attr.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
