package scheduledomain

import (
	"fmt"
	"slices"
	"strings"
)

// AutoBuildFeasibility summarises a set of division matches.
type AutoBuildFeasibility struct {
	ExactMatches          int             `json:"exactMatches"`
	SizeMismatches        int             `json:"sizeMismatches"`
	NewDivisions          int             `json:"newDivisions"`
	RemovedDivisions      int             `json:"removedDivisions"`
	TotalCurrentDivisions int             `json:"totalCurrentDivisions"`
	ConfidencePercent     int             `json:"confidencePercent"`
	ConfidenceLevel       ConfidenceLevel `json:"confidenceLevel"`
	FieldMismatches       []string        `json:"fieldMismatches"`
	Warnings              []string        `json:"warnings"`
}

// Buildable is false when there is nothing in the current season to schedule.
func (f AutoBuildFeasibility) Buildable() bool {
	return f.TotalCurrentDivisions > 0
}

// ScoreFeasibility computes the confidence assessment for a set of matches.
// Pattern field names are diffed case-insensitively against currentFields.
func ScoreFeasibility(matches []DivisionMatch, patterns []GamePlacementPattern, currentFields []string) AutoBuildFeasibility {
	var f AutoBuildFeasibility
	for _, m := range matches {
		switch m.MatchType {
		case ExactMatch:
			f.ExactMatches++
		case SizeMismatch:
			f.SizeMismatches++
		case NewDivision:
			f.NewDivisions++
		case RemovedDivision:
			f.RemovedDivisions++
		}
	}
	f.TotalCurrentDivisions = f.ExactMatches + f.SizeMismatches + f.NewDivisions
	f.ConfidencePercent = ConfidencePercent(f.ExactMatches, f.TotalCurrentDivisions)
	f.ConfidenceLevel = ConfidenceLevelFor(f.ConfidencePercent)
	f.FieldMismatches = FieldMismatches(patterns, currentFields)

	f.Warnings = []string{}
	if f.TotalCurrentDivisions == 0 {
		f.Warnings = append(f.Warnings, "current season has no divisions to schedule")
	}
	if f.SizeMismatches > 0 {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%d division(s) changed size and need a resolution strategy", f.SizeMismatches))
	}
	if f.NewDivisions > 0 {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%d new division(s) will be auto-scheduled", f.NewDivisions))
	}
	if f.RemovedDivisions > 0 {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%d source division(s) have no current counterpart", f.RemovedDivisions))
	}
	for _, name := range f.FieldMismatches {
		f.Warnings = append(f.Warnings, fmt.Sprintf("field %q is not assigned to the current season; its games will fail to place", name))
	}
	return f
}

// ConfidencePercent is floor(100*exact/total), or 0 when total is 0.
func ConfidencePercent(exact, total int) int {
	if total <= 0 {
		return 0
	}
	pct := 100 * exact / total
	return min(max(pct, 0), 100)
}

// ConfidenceLevelFor bands a percentage: above 80 green, 50 to 80 yellow,
// below 50 red.
func ConfidenceLevelFor(pct int) ConfidenceLevel {
	switch {
	case pct > 80:
		return ConfidenceGreen
	case pct >= 50:
		return ConfidenceYellow
	default:
		return ConfidenceRed
	}
}

// FieldMismatches lists pattern field names with no current counterpart.
func FieldMismatches(patterns []GamePlacementPattern, currentFields []string) []string {
	known := make(map[string]struct{}, len(currentFields))
	for _, name := range currentFields {
		known[canonicalName(name)] = struct{}{}
	}

	seen := make(map[string]struct{})
	missing := []string{}
	for _, p := range patterns {
		key := canonicalName(p.FieldName)
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		missing = append(missing, strings.TrimSpace(p.FieldName))
	}
	slices.SortFunc(missing, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return missing
}
