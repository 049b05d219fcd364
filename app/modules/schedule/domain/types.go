package scheduledomain

import (
	"fmt"
	"strings"
	"time"
)

// SlotType identifies who fills a game slot. "T" is a seeded team; anything
// else (W, L, S...) references the outcome of another game.
type SlotType string

// SlotTeam is the seeded-team slot type.
const SlotTeam SlotType = "T"

// IsTeam reports whether the slot resolves to a seeded team.
func (s SlotType) IsTeam() bool {
	return strings.EqualFold(string(s), string(SlotTeam))
}

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

// ClockTimeOf builds a ClockTime from an hour and minute.
func ClockTimeOf(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ClockTimeFromTime returns the wall-clock time of day of t.
func ClockTimeFromTime(t time.Time) ClockTime {
	return ClockTimeOf(t.Hour(), t.Minute())
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	var h, m int
	if _, err := fmt.Sscanf(string(b), "%d:%d", &h, &m); err != nil {
		return fmt.Errorf("invalid time of day %q: %w", string(b), err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("invalid time of day %q", string(b))
	}
	*c = ClockTimeOf(h, m)
	return nil
}

// MatchType classifies how a current division relates to the source season.
type MatchType int

const (
	ExactMatch MatchType = iota + 1
	SizeMismatch
	NewDivision
	RemovedDivision
)

var matchTypeNames = map[MatchType]string{
	ExactMatch:      "ExactMatch",
	SizeMismatch:    "SizeMismatch",
	NewDivision:     "NewDivision",
	RemovedDivision: "RemovedDivision",
}

func (m MatchType) String() string {
	if s, ok := matchTypeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MatchType(%d)", int(m))
}

func (m MatchType) MarshalText() ([]byte, error) {
	if _, ok := matchTypeNames[m]; !ok {
		return nil, fmt.Errorf("unknown match type %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *MatchType) UnmarshalText(b []byte) error {
	for k, v := range matchTypeNames {
		if strings.EqualFold(v, string(b)) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", string(b))
}

// ResolutionStrategy is the user's choice for a division whose size changed.
type ResolutionStrategy int

const (
	UseCurrentPairings ResolutionStrategy = iota + 1
	AutoSchedule
	Skip
)

var strategyNames = map[ResolutionStrategy]string{
	UseCurrentPairings: "use-current-pairings",
	AutoSchedule:       "auto-schedule",
	Skip:               "skip",
}

func (r ResolutionStrategy) String() string {
	if s, ok := strategyNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ResolutionStrategy(%d)", int(r))
}

func (r ResolutionStrategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[r]; !ok {
		return nil, fmt.Errorf("unknown resolution strategy %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *ResolutionStrategy) UnmarshalText(b []byte) error {
	parsed, err := ParseResolutionStrategy(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseResolutionStrategy accepts the wire names of the strategies.
func ParseResolutionStrategy(s string) (ResolutionStrategy, error) {
	for k, v := range strategyNames {
		if strings.EqualFold(v, strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown resolution strategy %q", s)
}

// BuildStatus is the outcome recorded for each division in a build.
type BuildStatus string

const (
	StatusPatternReplay    BuildStatus = "pattern-replay"
	StatusAutoSchedule     BuildStatus = "auto-schedule"
	StatusSkipped          BuildStatus = "skipped"
	StatusAlreadyScheduled BuildStatus = "already-scheduled"
)

// Scheduled reports whether the division produced a placement attempt.
func (s BuildStatus) Scheduled() bool {
	return s == StatusPatternReplay || s == StatusAutoSchedule
}

// ConfidenceLevel bands the feasibility confidence percentage.
type ConfidenceLevel string

const (
	ConfidenceGreen  ConfidenceLevel = "green"
	ConfidenceYellow ConfidenceLevel = "yellow"
	ConfidenceRed    ConfidenceLevel = "red"
)

// PoolFormat describes how a division's games are organised.
type PoolFormat string

const (
	PoolRoundRobin PoolFormat = "round-robin"
	PoolBracket    PoolFormat = "bracket"
)
