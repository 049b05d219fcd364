package scheduleservice

import (
	"context"
	"errors"
	"fmt"

	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type candidatesResult = results.OperationResult[[]scheduledb.SourceCandidate, error]

// ListSourceCandidates lists the tenant's earlier seasons that have games.
func (s *ScheduleService) ListSourceCandidates(ctx context.Context, seasonID uuid.UUID) ([]scheduledb.SourceCandidate, error) {
	listTx := func(ctx context.Context, db bun.IDB) (candidatesResult, error) {
		season, err := s.repo.GetSeason(ctx, db, seasonID)
		if err != nil {
			if errors.Is(err, scheduledb.ErrNotFound) {
				return results.FailureResult[[]scheduledb.SourceCandidate, error](ErrSeasonNotFound), nil
			}
			return candidatesResult{}, fmt.Errorf("failed to load season: %w", err)
		}

		candidates, err := s.repo.ListSourceCandidates(ctx, db, season.TenantID, season.Year)
		if err != nil {
			return candidatesResult{}, fmt.Errorf("failed to list source candidates: %w", err)
		}
		if candidates == nil {
			candidates = []scheduledb.SourceCandidate{}
		}
		return results.SuccessResult[[]scheduledb.SourceCandidate, error](candidates), nil
	}

	result, err := withTelemetry(s, ctx, "ListSourceCandidates", seasonID.String(), func(ctx context.Context) (candidatesResult, error) {
		return runReadOnly(s, ctx, listTx)
	})
	return unwrap(result, err)
}
