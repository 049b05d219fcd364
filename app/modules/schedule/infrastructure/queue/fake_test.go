package schedulequeue

import (
	"context"
	"sync"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// FakeScheduleService is a programmable scheduleservice.Service.
type FakeScheduleService struct {
	trace []string

	BuildFunc    func(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error)
	ValidateFunc func(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error)
}

func (f *FakeScheduleService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeScheduleService) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeScheduleService) ListSourceCandidates(context.Context, uuid.UUID) ([]scheduledb.SourceCandidate, error) {
	f.record("ListSourceCandidates")
	return nil, nil
}

func (f *FakeScheduleService) Analyze(context.Context, uuid.UUID, uuid.UUID) (*scheduleservice.AutoBuildAnalysisResponse, error) {
	f.record("Analyze")
	return nil, nil
}

func (f *FakeScheduleService) Build(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
	f.record("Build")
	if f.BuildFunc != nil {
		return f.BuildFunc(ctx, seasonID, req)
	}
	return &scheduledomain.AutoBuildResult{SeasonID: seasonID}, nil
}

func (f *FakeScheduleService) Undo(context.Context, uuid.UUID) (int, error) {
	f.record("Undo")
	return 0, nil
}

func (f *FakeScheduleService) SeasonLocation(context.Context, uuid.UUID) (*time.Location, error) {
	f.record("SeasonLocation")
	return time.UTC, nil
}

func (f *FakeScheduleService) Validate(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
	f.record("Validate")
	if f.ValidateFunc != nil {
		return f.ValidateFunc(ctx, seasonID)
	}
	return &scheduledomain.AutoBuildQaResult{SeasonID: seasonID}, nil
}

func (f *FakeScheduleService) ExportQaWorkbook(context.Context, uuid.UUID) ([]byte, error) {
	f.record("ExportQaWorkbook")
	return nil, nil
}

func (f *FakeScheduleService) RenderGamesPerDateChart(context.Context, uuid.UUID) ([]byte, error) {
	f.record("RenderGamesPerDateChart")
	return nil, nil
}

var _ scheduleservice.Service = (*FakeScheduleService)(nil)

// FakeBuildLock grants the lock unless Held is set.
type FakeBuildLock struct {
	Held     bool
	locked   int
	unlocked int
}

func (l *FakeBuildLock) TryLock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	if l.Held {
		return nil, scheduleservice.ErrBuildInProgress
	}
	l.locked++
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

// FakePublisher records published messages by topic.
type FakePublisher struct {
	mu         sync.Mutex
	PublishErr error
	Messages   map[string][]*message.Message
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Messages: map[string][]*message.Message{}}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PublishErr != nil {
		return p.PublishErr
	}
	p.Messages[topic] = append(p.Messages[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var topics []string
	for t, msgs := range p.Messages {
		for range msgs {
			topics = append(topics, t)
		}
	}
	return topics
}
