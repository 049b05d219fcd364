package schedulehandlers

import (
	"context"
	"net/http"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	"github.com/Black-And-White-Club/league-scheduler/pkg/handlerwrapper"
	"github.com/google/uuid"
)

// Handlers handles the schedule module's inbound events.
type Handlers interface {
	HandleAutoBuildRequested(ctx context.Context, payload *scheduleevents.AutoBuildRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleUndoRequested(ctx context.Context, payload *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleQaRequested(ctx context.Context, payload *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// HTTPHandlers serves the admin API.
type HTTPHandlers interface {
	HandleListSources(w http.ResponseWriter, r *http.Request)
	HandleAnalyze(w http.ResponseWriter, r *http.Request)
	HandleBuild(w http.ResponseWriter, r *http.Request)
	HandleUndo(w http.ResponseWriter, r *http.Request)
	HandleValidate(w http.ResponseWriter, r *http.Request)
	HandleExportQa(w http.ResponseWriter, r *http.Request)
	HandleGamesPerDateChart(w http.ResponseWriter, r *http.Request)
}

// Queue enqueues background jobs.
type Queue interface {
	EnqueueAutoBuild(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest, requestedBy string) (schedulequeue.EnqueueResult, error)
	EnqueueQaValidation(ctx context.Context, seasonID uuid.UUID) (schedulequeue.EnqueueResult, error)
}
