package scheduleservice

import (
	"context"
	"strings"
	"sync"

	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Schedule Repo
// ------------------------

// FakeScheduleRepository provides a programmable stub for scheduledb.Repository.
type FakeScheduleRepository struct {
	trace []string

	GetSeasonFunc                   func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*scheduledb.Season, error)
	GetLeagueForSeasonFunc          func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*scheduledb.League, error)
	ListSourceCandidatesFunc        func(ctx context.Context, db bun.IDB, tenantID uuid.UUID, beforeYear int) ([]scheduledb.SourceCandidate, error)
	ListSourceDivisionSummariesFunc func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.DivisionSummaryRow, error)
	ListDivisionsFunc               func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.DivisionRow, error)
	ListTeamsFunc                   func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.TeamRow, error)
	ListSeasonFieldsFunc            func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.Field, error)
	ListTimeslotsFunc               func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.TimeslotRow, error)
	ListPairingsFunc                func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.Pairing, error)
	ListSeasonGamesFunc             func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.GameRow, error)
	CreateGamesFunc                 func(ctx context.Context, db bun.IDB, games []*scheduledb.Game) error
	DeleteSeasonGamesFunc           func(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (int, error)
	AnalysisFingerprintFunc         func(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (string, error)
}

// NewFakeScheduleRepository initializes a new FakeScheduleRepository with an empty trace.
func NewFakeScheduleRepository() *FakeScheduleRepository {
	return &FakeScheduleRepository{
		trace: []string{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeScheduleRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScheduleRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeScheduleRepository) GetSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*scheduledb.Season, error) {
	f.record("GetSeason")
	if f.GetSeasonFunc != nil {
		return f.GetSeasonFunc(ctx, db, seasonID)
	}
	return nil, scheduledb.ErrNotFound
}

func (f *FakeScheduleRepository) GetLeagueForSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*scheduledb.League, error) {
	f.record("GetLeagueForSeason")
	if f.GetLeagueForSeasonFunc != nil {
		return f.GetLeagueForSeasonFunc(ctx, db, seasonID)
	}
	return nil, scheduledb.ErrNotFound
}

func (f *FakeScheduleRepository) ListSourceCandidates(ctx context.Context, db bun.IDB, tenantID uuid.UUID, beforeYear int) ([]scheduledb.SourceCandidate, error) {
	f.record("ListSourceCandidates")
	if f.ListSourceCandidatesFunc != nil {
		return f.ListSourceCandidatesFunc(ctx, db, tenantID, beforeYear)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListSourceDivisionSummaries(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.DivisionSummaryRow, error) {
	f.record("ListSourceDivisionSummaries")
	if f.ListSourceDivisionSummariesFunc != nil {
		return f.ListSourceDivisionSummariesFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListDivisions(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.DivisionRow, error) {
	f.record("ListDivisions")
	if f.ListDivisionsFunc != nil {
		return f.ListDivisionsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListTeams(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.TeamRow, error) {
	f.record("ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListSeasonFields(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.Field, error) {
	f.record("ListSeasonFields")
	if f.ListSeasonFieldsFunc != nil {
		return f.ListSeasonFieldsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListTimeslots(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.TimeslotRow, error) {
	f.record("ListTimeslots")
	if f.ListTimeslotsFunc != nil {
		return f.ListTimeslotsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListPairings(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.Pairing, error) {
	f.record("ListPairings")
	if f.ListPairingsFunc != nil {
		return f.ListPairingsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) ListSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]scheduledb.GameRow, error) {
	f.record("ListSeasonGames")
	if f.ListSeasonGamesFunc != nil {
		return f.ListSeasonGamesFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeScheduleRepository) CreateGames(ctx context.Context, db bun.IDB, games []*scheduledb.Game) error {
	f.record("CreateGames")
	if f.CreateGamesFunc != nil {
		return f.CreateGamesFunc(ctx, db, games)
	}
	return nil
}

func (f *FakeScheduleRepository) DeleteSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (int, error) {
	f.record("DeleteSeasonGames")
	if f.DeleteSeasonGamesFunc != nil {
		return f.DeleteSeasonGamesFunc(ctx, db, seasonID)
	}
	return 0, nil
}

func (f *FakeScheduleRepository) AnalysisFingerprint(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (string, error) {
	f.record("AnalysisFingerprint")
	if f.AnalysisFingerprintFunc != nil {
		return f.AnalysisFingerprintFunc(ctx, db, seasonID, sourceSeasonID)
	}
	return "v1", nil
}

// Ensure the fake satisfies the interface
var _ scheduledb.Repository = (*FakeScheduleRepository)(nil)

// ------------------------
// Fake Analysis Cache
// ------------------------

// FakeAnalysisCache keeps analysis responses in memory.
type FakeAnalysisCache struct {
	mu      sync.Mutex
	entries map[string]any
	trace   []string

	LoadErr  error
	StoreErr error
}

func NewFakeAnalysisCache() *FakeAnalysisCache {
	return &FakeAnalysisCache{entries: make(map[string]any)}
}

func (c *FakeAnalysisCache) Trace() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.trace))
	copy(out, c.trace)
	return out
}

func fakeCacheKey(k AnalysisKey) string {
	return k.SeasonID.String() + ":" + k.SourceSeasonID.String() + ":" + k.Fingerprint
}

func (c *FakeAnalysisCache) Load(_ context.Context, key AnalysisKey, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = append(c.trace, "Load")
	if c.LoadErr != nil {
		return false, c.LoadErr
	}
	v, ok := c.entries[fakeCacheKey(key)]
	if !ok {
		return false, nil
	}
	*dst.(*AutoBuildAnalysisResponse) = *v.(*AutoBuildAnalysisResponse)
	return true, nil
}

func (c *FakeAnalysisCache) Store(_ context.Context, key AnalysisKey, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = append(c.trace, "Store")
	if c.StoreErr != nil {
		return c.StoreErr
	}
	c.entries[fakeCacheKey(key)] = v
	return nil
}

func (c *FakeAnalysisCache) Invalidate(_ context.Context, seasonID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = append(c.trace, "Invalidate")
	prefix := seasonID.String() + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

var _ AnalysisCache = (*FakeAnalysisCache)(nil)
