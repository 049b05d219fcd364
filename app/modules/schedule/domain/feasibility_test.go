package scheduledomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func matchesOf(types ...MatchType) []DivisionMatch {
	out := make([]DivisionMatch, len(types))
	for i, mt := range types {
		out[i] = DivisionMatch{MatchType: mt}
	}
	return out
}

func TestScoreFeasibility(t *testing.T) {
	tests := []struct {
		name         string
		matches      []DivisionMatch
		wantTotal    int
		wantPercent  int
		wantLevel    ConfidenceLevel
		wantWarnings int
	}{
		{
			name:        "all exact",
			matches:     matchesOf(ExactMatch, ExactMatch, ExactMatch),
			wantTotal:   3,
			wantPercent: 100,
			wantLevel:   ConfidenceGreen,
		},
		{
			name:         "removed does not count toward total",
			matches:      matchesOf(ExactMatch, RemovedDivision),
			wantTotal:    1,
			wantPercent:  100,
			wantLevel:    ConfidenceGreen,
			wantWarnings: 1,
		},
		{
			name:         "two thirds floors to 66",
			matches:      matchesOf(ExactMatch, ExactMatch, SizeMismatch),
			wantTotal:    3,
			wantPercent:  66,
			wantLevel:    ConfidenceYellow,
			wantWarnings: 1,
		},
		{
			name:         "exactly eighty is yellow",
			matches:      matchesOf(ExactMatch, ExactMatch, ExactMatch, ExactMatch, NewDivision),
			wantTotal:    5,
			wantPercent:  80,
			wantLevel:    ConfidenceYellow,
			wantWarnings: 1,
		},
		{
			name:         "mostly new is red",
			matches:      matchesOf(ExactMatch, NewDivision, NewDivision, SizeMismatch),
			wantTotal:    4,
			wantPercent:  25,
			wantLevel:    ConfidenceRed,
			wantWarnings: 2,
		},
		{
			name:         "no current divisions",
			matches:      matchesOf(RemovedDivision, RemovedDivision),
			wantTotal:    0,
			wantPercent:  0,
			wantLevel:    ConfidenceRed,
			wantWarnings: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ScoreFeasibility(tt.matches, nil, nil)
			assert.Equal(t, tt.wantTotal, f.TotalCurrentDivisions)
			assert.Equal(t, tt.wantPercent, f.ConfidencePercent)
			assert.Equal(t, tt.wantLevel, f.ConfidenceLevel)
			assert.Len(t, f.Warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantTotal > 0, f.Buildable())
			assert.NotNil(t, f.FieldMismatches)
			assert.Equal(t, f.ExactMatches+f.SizeMismatches+f.NewDivisions, f.TotalCurrentDivisions)
		})
	}
}

func TestConfidencePercent_Bounds(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for exact := 0; exact <= total; exact++ {
			pct := ConfidencePercent(exact, total)
			assert.GreaterOrEqual(t, pct, 0)
			assert.LessOrEqual(t, pct, 100)
			if total > 0 {
				assert.Equal(t, exact == total, pct == 100, "exact=%d total=%d", exact, total)
			}
		}
	}
}

func TestConfidenceLevelFor(t *testing.T) {
	assert.Equal(t, ConfidenceGreen, ConfidenceLevelFor(100))
	assert.Equal(t, ConfidenceGreen, ConfidenceLevelFor(81))
	assert.Equal(t, ConfidenceYellow, ConfidenceLevelFor(80))
	assert.Equal(t, ConfidenceYellow, ConfidenceLevelFor(50))
	assert.Equal(t, ConfidenceRed, ConfidenceLevelFor(49))
	assert.Equal(t, ConfidenceRed, ConfidenceLevelFor(0))
}

func TestFieldMismatches(t *testing.T) {
	patterns := []GamePlacementPattern{
		{FieldName: "Field 1"},
		{FieldName: "Riverside"},
		{FieldName: "field 2"},
		{FieldName: "riverside"},
		{FieldName: "Annex"},
	}
	got := FieldMismatches(patterns, []string{"FIELD 1", "Field 2"})
	assert.Equal(t, []string{"Annex", "Riverside"}, got)

	f := ScoreFeasibility(matchesOf(ExactMatch), patterns, []string{"Field 1", "Field 2"})
	assert.Equal(t, []string{"Annex", "Riverside"}, f.FieldMismatches)
	assert.Len(t, f.Warnings, 2)
	assert.Contains(t, f.Warnings[0], "Annex")

	assert.Empty(t, FieldMismatches(patterns[:1], []string{"Field 1"}))
}
