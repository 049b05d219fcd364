package scheduledomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrDuplicateDivision is returned when two divisions share the same
// (agegroup, division) key. The matcher never picks one of them.
var ErrDuplicateDivision = errors.New("duplicate agegroup/division pair")

// SourceDivisionSummary describes a historical division.
type SourceDivisionSummary struct {
	AgegroupName string `json:"agegroupName"`
	DivisionName string `json:"divisionName"`
	TeamCount    int    `json:"teamCount"`
	GameCount    int    `json:"gameCount"`
}

// CurrentDivisionSummary describes a division of the season being built.
type CurrentDivisionSummary struct {
	AgegroupID   uuid.UUID `json:"agegroupId"`
	AgegroupName string    `json:"agegroupName"`
	DivisionID   uuid.UUID `json:"divisionId"`
	DivisionName string    `json:"divisionName"`
	TeamCount    int       `json:"teamCount"`
}

// DivisionMatch pairs a current division with its historical counterpart.
type DivisionMatch struct {
	// AgegroupName is the current-season agegroup name, or the normalized
	// source name for removed divisions.
	AgegroupName       string     `json:"agegroupName"`
	DivisionName       string     `json:"divisionName"`
	SourceAgegroupName string     `json:"sourceAgegroupName,omitempty"`
	SourceDivisionName string     `json:"sourceDivisionName,omitempty"`
	CurrentAgegroupID  *uuid.UUID `json:"currentAgegroupId"`
	CurrentDivisionID  *uuid.UUID `json:"currentDivisionId"`
	SourceTeamCount    int        `json:"sourceTeamCount"`
	CurrentTeamCount   int        `json:"currentTeamCount"`
	SourceGameCount    int        `json:"sourceGameCount"`
	MatchType          MatchType  `json:"matchType"`
}

// HasSource reports whether the match has a historical division behind it.
func (m DivisionMatch) HasSource() bool {
	return m.MatchType == ExactMatch || m.MatchType == SizeMismatch || m.MatchType == RemovedDivision
}

// MatchDivisions aligns current divisions with source divisions. Source
// agegroup names pass through normalize before comparison; nil means identity.
// Current divisions come first in (agegroup, division) order, followed by the
// removed source divisions in the same order.
func MatchDivisions(source []SourceDivisionSummary, current []CurrentDivisionSummary, normalize NameNormalizer) ([]DivisionMatch, error) {
	if normalize == nil {
		normalize = IdentityNormalizer
	}

	sourceByKey := make(map[string]SourceDivisionSummary, len(source))
	normalizedNames := make(map[string]string, len(source))
	for _, s := range source {
		normalized := normalize(s.AgegroupName)
		key := divisionKey(normalized, s.DivisionName)
		if _, dup := sourceByKey[key]; dup {
			return nil, fmt.Errorf("%w: source %q/%q", ErrDuplicateDivision, s.AgegroupName, s.DivisionName)
		}
		sourceByKey[key] = s
		normalizedNames[key] = normalized
	}

	seenCurrent := make(map[string]struct{}, len(current))
	for _, c := range current {
		key := divisionKey(c.AgegroupName, c.DivisionName)
		if _, dup := seenCurrent[key]; dup {
			return nil, fmt.Errorf("%w: current %q/%q", ErrDuplicateDivision, c.AgegroupName, c.DivisionName)
		}
		seenCurrent[key] = struct{}{}
	}

	orderedCurrent := slices.Clone(current)
	slices.SortFunc(orderedCurrent, func(a, b CurrentDivisionSummary) int {
		return cmp.Or(
			cmp.Compare(canonicalName(a.AgegroupName), canonicalName(b.AgegroupName)),
			cmp.Compare(canonicalName(a.DivisionName), canonicalName(b.DivisionName)),
		)
	})

	matches := make([]DivisionMatch, 0, len(current)+len(source))
	matched := make(map[string]struct{}, len(source))
	for _, c := range orderedCurrent {
		key := divisionKey(c.AgegroupName, c.DivisionName)
		agegroupID, divisionID := c.AgegroupID, c.DivisionID

		s, ok := sourceByKey[key]
		if !ok {
			matches = append(matches, DivisionMatch{
				AgegroupName:      c.AgegroupName,
				DivisionName:      c.DivisionName,
				CurrentAgegroupID: &agegroupID,
				CurrentDivisionID: &divisionID,
				CurrentTeamCount:  c.TeamCount,
				MatchType:         NewDivision,
			})
			continue
		}

		matched[key] = struct{}{}
		matchType := SizeMismatch
		if s.TeamCount == c.TeamCount {
			matchType = ExactMatch
		}
		matches = append(matches, DivisionMatch{
			AgegroupName:       c.AgegroupName,
			DivisionName:       c.DivisionName,
			SourceAgegroupName: s.AgegroupName,
			SourceDivisionName: s.DivisionName,
			CurrentAgegroupID:  &agegroupID,
			CurrentDivisionID:  &divisionID,
			SourceTeamCount:    s.TeamCount,
			CurrentTeamCount:   c.TeamCount,
			SourceGameCount:    s.GameCount,
			MatchType:          matchType,
		})
	}

	var removed []DivisionMatch
	for key, s := range sourceByKey {
		if _, ok := matched[key]; ok {
			continue
		}
		removed = append(removed, DivisionMatch{
			AgegroupName:       normalizedNames[key],
			DivisionName:       s.DivisionName,
			SourceAgegroupName: s.AgegroupName,
			SourceDivisionName: s.DivisionName,
			SourceTeamCount:    s.TeamCount,
			SourceGameCount:    s.GameCount,
			MatchType:          RemovedDivision,
		})
	}
	slices.SortFunc(removed, func(a, b DivisionMatch) int {
		return cmp.Compare(divisionKey(a.AgegroupName, a.DivisionName), divisionKey(b.AgegroupName, b.DivisionName))
	})

	return append(matches, removed...), nil
}
