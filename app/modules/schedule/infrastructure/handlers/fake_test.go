package schedulehandlers

import (
	"context"
	"sync"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/google/uuid"
)

// FakeScheduleService is a programmable scheduleservice.Service.
type FakeScheduleService struct {
	trace []string

	ListSourceCandidatesFunc    func(ctx context.Context, seasonID uuid.UUID) ([]scheduledb.SourceCandidate, error)
	AnalyzeFunc                 func(ctx context.Context, seasonID, sourceSeasonID uuid.UUID) (*scheduleservice.AutoBuildAnalysisResponse, error)
	BuildFunc                   func(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error)
	UndoFunc                    func(ctx context.Context, seasonID uuid.UUID) (int, error)
	SeasonLocationFunc          func(ctx context.Context, seasonID uuid.UUID) (*time.Location, error)
	ValidateFunc                func(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error)
	ExportQaWorkbookFunc        func(ctx context.Context, seasonID uuid.UUID) ([]byte, error)
	RenderGamesPerDateChartFunc func(ctx context.Context, seasonID uuid.UUID) ([]byte, error)
}

func NewFakeScheduleService() *FakeScheduleService {
	return &FakeScheduleService{}
}

func (f *FakeScheduleService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScheduleService) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeScheduleService) ListSourceCandidates(ctx context.Context, seasonID uuid.UUID) ([]scheduledb.SourceCandidate, error) {
	f.record("ListSourceCandidates")
	if f.ListSourceCandidatesFunc != nil {
		return f.ListSourceCandidatesFunc(ctx, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleService) Analyze(ctx context.Context, seasonID, sourceSeasonID uuid.UUID) (*scheduleservice.AutoBuildAnalysisResponse, error) {
	f.record("Analyze")
	if f.AnalyzeFunc != nil {
		return f.AnalyzeFunc(ctx, seasonID, sourceSeasonID)
	}
	return &scheduleservice.AutoBuildAnalysisResponse{SeasonID: seasonID}, nil
}

func (f *FakeScheduleService) Build(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
	f.record("Build")
	if f.BuildFunc != nil {
		return f.BuildFunc(ctx, seasonID, req)
	}
	return &scheduledomain.AutoBuildResult{SeasonID: seasonID}, nil
}

func (f *FakeScheduleService) Undo(ctx context.Context, seasonID uuid.UUID) (int, error) {
	f.record("Undo")
	if f.UndoFunc != nil {
		return f.UndoFunc(ctx, seasonID)
	}
	return 0, nil
}

func (f *FakeScheduleService) SeasonLocation(ctx context.Context, seasonID uuid.UUID) (*time.Location, error) {
	f.record("SeasonLocation")
	if f.SeasonLocationFunc != nil {
		return f.SeasonLocationFunc(ctx, seasonID)
	}
	return time.UTC, nil
}

func (f *FakeScheduleService) Validate(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
	f.record("Validate")
	if f.ValidateFunc != nil {
		return f.ValidateFunc(ctx, seasonID)
	}
	return &scheduledomain.AutoBuildQaResult{SeasonID: seasonID}, nil
}

func (f *FakeScheduleService) ExportQaWorkbook(ctx context.Context, seasonID uuid.UUID) ([]byte, error) {
	f.record("ExportQaWorkbook")
	if f.ExportQaWorkbookFunc != nil {
		return f.ExportQaWorkbookFunc(ctx, seasonID)
	}
	return []byte("PK"), nil
}

func (f *FakeScheduleService) RenderGamesPerDateChart(ctx context.Context, seasonID uuid.UUID) ([]byte, error) {
	f.record("RenderGamesPerDateChart")
	if f.RenderGamesPerDateChartFunc != nil {
		return f.RenderGamesPerDateChartFunc(ctx, seasonID)
	}
	return []byte("\x89PNG"), nil
}

var _ scheduleservice.Service = (*FakeScheduleService)(nil)

// FakeQueue records enqueued jobs.
type FakeQueue struct {
	mu    sync.Mutex
	trace []string

	EnqueueAutoBuildFunc    func(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest, requestedBy string) (schedulequeue.EnqueueResult, error)
	EnqueueQaValidationFunc func(ctx context.Context, seasonID uuid.UUID) (schedulequeue.EnqueueResult, error)
}

func (q *FakeQueue) record(step string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.trace = append(q.trace, step)
}

func (q *FakeQueue) Trace() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.trace...)
}

func (q *FakeQueue) EnqueueAutoBuild(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest, requestedBy string) (schedulequeue.EnqueueResult, error) {
	q.record("EnqueueAutoBuild")
	if q.EnqueueAutoBuildFunc != nil {
		return q.EnqueueAutoBuildFunc(ctx, seasonID, req, requestedBy)
	}
	return schedulequeue.EnqueueResult{JobID: 1}, nil
}

func (q *FakeQueue) EnqueueQaValidation(ctx context.Context, seasonID uuid.UUID) (schedulequeue.EnqueueResult, error) {
	q.record("EnqueueQaValidation")
	if q.EnqueueQaValidationFunc != nil {
		return q.EnqueueQaValidationFunc(ctx, seasonID)
	}
	return schedulequeue.EnqueueResult{JobID: 2}, nil
}

var _ Queue = (*FakeQueue)(nil)

// FakeBuildLock refuses the lock while Held is set.
type FakeBuildLock struct {
	Held bool
}

func (l *FakeBuildLock) TryLock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	if l.Held {
		return nil, scheduleservice.ErrBuildInProgress
	}
	return func(context.Context) error { return nil }, nil
}
