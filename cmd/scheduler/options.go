package main

import (
	"fmt"
	"strings"
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/dateparse"
	"github.com/google/uuid"
)

type buildOptions struct {
	Source          string
	Start           string
	SkipDivisions   []string
	Resolutions     []string
	IncludeBrackets bool
	SkipScheduled   bool
}

// buildRequest turns the build flags into an AutoBuildRequest. Resolutions
// are given as divisionID=strategy.
func buildRequest(opts buildOptions, dates *dateparse.Parser, loc *time.Location) (scheduledomain.AutoBuildRequest, error) {
	var req scheduledomain.AutoBuildRequest

	sourceID, err := uuid.Parse(opts.Source)
	if err != nil {
		return req, fmt.Errorf("invalid --source: %w", err)
	}
	req.SourceSeasonID = sourceID

	start, err := dates.ParseOptionalDate(opts.Start, loc)
	if err != nil {
		return req, fmt.Errorf("invalid --start: %w", err)
	}
	req.StartDate = start

	for _, s := range opts.SkipDivisions {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return req, fmt.Errorf("invalid --skip-division %q: %w", s, err)
		}
		req.SkipDivisionIDs = append(req.SkipDivisionIDs, id)
	}

	for _, s := range opts.Resolutions {
		divPart, strategyPart, ok := strings.Cut(s, "=")
		if !ok {
			return req, fmt.Errorf("invalid --resolution %q: want divisionID=strategy", s)
		}
		id, err := uuid.Parse(strings.TrimSpace(divPart))
		if err != nil {
			return req, fmt.Errorf("invalid --resolution %q: %w", s, err)
		}
		strategy, err := scheduledomain.ParseResolutionStrategy(strings.TrimSpace(strategyPart))
		if err != nil {
			return req, fmt.Errorf("invalid --resolution %q: %w", s, err)
		}
		req.Resolutions = append(req.Resolutions, scheduledomain.SizeMismatchResolution{
			DivisionID: id,
			Strategy:   strategy,
		})
	}

	req.IncludeBracketGames = opts.IncludeBrackets
	req.SkipAlreadyScheduled = opts.SkipScheduled
	return req, nil
}

func issueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	r := authjwt.Role(strings.ToLower(role))
	switch r {
	case authjwt.RoleAdmin, authjwt.RoleDirector, authjwt.RoleViewer:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
	tokens, err := authjwt.NewProvider(secret)
	if err != nil {
		return "", err
	}
	return tokens.GenerateToken(subject, r, ttl)
}
