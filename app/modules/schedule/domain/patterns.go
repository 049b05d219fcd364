package scheduledomain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceGame is one game of a historical season as read from the store.
type SourceGame struct {
	ID           uuid.UUID
	AgegroupName string
	DivisionName string
	FieldID      uuid.UUID
	FieldName    string
	GameDate     time.Time
	Round        int
	GameNumber   int
	T1Type       SlotType
	T1No         int
	T2Type       SlotType
	T2No         int
}

// GamePlacementPattern is a historical game's placement with the calendar
// date replaced by a day ordinal.
type GamePlacementPattern struct {
	AgegroupName string       `json:"agegroupName"`
	DivisionName string       `json:"divisionName"`
	Round        int          `json:"round"`
	GameNumber   int          `json:"gameNumber"`
	FieldID      uuid.UUID    `json:"fieldId"`
	FieldName    string       `json:"fieldName"`
	DayOfWeek    time.Weekday `json:"dayOfWeek"`
	TimeOfDay    ClockTime    `json:"timeOfDay"`
	DayOrdinal   int          `json:"dayOrdinal"`
	// DayOffset is the number of calendar days since the first scheduled day.
	DayOffset int      `json:"dayOffset"`
	T1Type    SlotType `json:"t1Type"`
	T1No      int      `json:"t1No"`
	T2Type    SlotType `json:"t2Type"`
	T2No      int      `json:"t2No"`
}

// IsBracket reports whether either slot references another game's outcome.
func (p GamePlacementPattern) IsBracket() bool {
	return !p.T1Type.IsTeam() || !p.T2Type.IsTeam()
}

// ExtractPatterns abstracts games into placement patterns ordered by start
// time, field name, round and game number. Each distinct date gets the next
// ordinal, starting at 0. An empty input returns nil.
//
// Dates, weekdays and times of day are read off each GameDate's wall clock,
// so games must be in the source season's location.
func ExtractPatterns(games []SourceGame) []GamePlacementPattern {
	if len(games) == 0 {
		return nil
	}

	sorted := slices.Clone(games)
	slices.SortStableFunc(sorted, compareSourceGames)

	first := dateOf(sorted[0].GameDate)
	patterns := make([]GamePlacementPattern, 0, len(sorted))

	ordinal := -1
	var current time.Time
	for _, g := range sorted {
		day := dateOf(g.GameDate)
		if ordinal < 0 || !day.Equal(current) {
			ordinal++
			current = day
		}

		patterns = append(patterns, GamePlacementPattern{
			AgegroupName: g.AgegroupName,
			DivisionName: g.DivisionName,
			Round:        g.Round,
			GameNumber:   g.GameNumber,
			FieldID:      g.FieldID,
			FieldName:    g.FieldName,
			DayOfWeek:    g.GameDate.Weekday(),
			TimeOfDay:    ClockTimeFromTime(g.GameDate),
			DayOrdinal:   ordinal,
			DayOffset:    daysBetween(first, day),
			T1Type:       g.T1Type,
			T1No:         g.T1No,
			T2Type:       g.T2Type,
			T2No:         g.T2No,
		})
	}
	return patterns
}

func compareSourceGames(a, b SourceGame) int {
	return cmp.Or(
		a.GameDate.Compare(b.GameDate),
		cmp.Compare(strings.ToLower(a.FieldName), strings.ToLower(b.FieldName)),
		cmp.Compare(a.Round, b.Round),
		cmp.Compare(a.GameNumber, b.GameNumber),
		cmp.Compare(a.ID.String(), b.ID.String()),
	)
}

// PatternsFor returns the patterns of one source division, keeping order.
func PatternsFor(patterns []GamePlacementPattern, agegroupName, divisionName string) []GamePlacementPattern {
	key := divisionKey(agegroupName, divisionName)
	var out []GamePlacementPattern
	for _, p := range patterns {
		if divisionKey(p.AgegroupName, p.DivisionName) == key {
			out = append(out, p)
		}
	}
	return out
}

// DayCalendar projects day ordinals onto a new season. It keeps the source
// weekday of the first day and the calendar spacing between days.
type DayCalendar struct {
	firstWeekday time.Weekday
	offsets      map[int]int
}

// NewDayCalendar derives the ordinal calendar from extracted patterns.
func NewDayCalendar(patterns []GamePlacementPattern) DayCalendar {
	cal := DayCalendar{offsets: make(map[int]int)}
	for _, p := range patterns {
		if p.DayOrdinal == 0 {
			cal.firstWeekday = p.DayOfWeek
		}
		cal.offsets[p.DayOrdinal] = p.DayOffset
	}
	return cal
}

// Anchor returns midnight of the first date on or after start that falls on
// the source season's first weekday, in start's location.
func (c DayCalendar) Anchor(start time.Time) time.Time {
	day := startOfDay(start)
	if len(c.offsets) == 0 {
		return day
	}
	shift := (int(c.firstWeekday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, shift)
}

// Resolve returns the concrete start time for a pattern's ordinal and time of
// day. The time of day is wall-clock time in start's location, so it holds
// across a DST change. ok is false when the ordinal is not part of the
// calendar.
func (c DayCalendar) Resolve(start time.Time, ordinal int, tod ClockTime) (time.Time, bool) {
	offset, ok := c.offsets[ordinal]
	if !ok {
		return time.Time{}, false
	}
	day := c.Anchor(start).AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location()), true
}

// dateOf keys t's wall-clock date as midnight UTC. Day arithmetic on these
// keys is exact because UTC has no DST.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfDay is midnight of t's wall-clock date in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}
