package scheduledb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Season is one edition of a tenant's league calendar.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID  uuid.UUID  `bun:"tenant_id,type:uuid,notnull"`
	Name      string     `bun:"name,notnull"`
	Path      string     `bun:"path,notnull,default:''"`
	Year      int        `bun:"year,notnull"`
	StartDate *time.Time `bun:"start_date,type:date"`
	// TimeZone is an IANA zone name; empty means the configured default.
	TimeZone  string     `bun:"time_zone,nullzero"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type League struct {
	bun.BaseModel `bun:"table:leagues,alias:l"`

	ID       uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	SeasonID uuid.UUID `bun:"season_id,type:uuid,notnull"`
	Name     string    `bun:"name,notnull"`
}

type Agegroup struct {
	bun.BaseModel `bun:"table:agegroups,alias:ag"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	LeagueID  uuid.UUID `bun:"league_id,type:uuid,notnull"`
	Name      string    `bun:"name,notnull"`
	SortOrder int       `bun:"sort_order,notnull,default:0"`
}

type Division struct {
	bun.BaseModel `bun:"table:divisions,alias:d"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	AgegroupID    uuid.UUID `bun:"agegroup_id,type:uuid,notnull"`
	Name          string    `bun:"name,notnull"`
	PoolFormat    string    `bun:"pool_format,notnull,default:'round-robin'"`
	GamesPerPair  int       `bun:"games_per_pair,notnull,default:1"`
	MinGapMinutes int       `bun:"min_gap_minutes,notnull,default:0"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID         uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	DivisionID uuid.UUID `bun:"division_id,type:uuid,notnull"`
	Name       string    `bun:"name,notnull"`
	DivRank    int       `bun:"div_rank,notnull"`
	Active     bool      `bun:"active,notnull,default:true"`
}

type Field struct {
	bun.BaseModel `bun:"table:fields,alias:f"`

	ID       uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID uuid.UUID `bun:"tenant_id,type:uuid,notnull"`
	Name     string    `bun:"name,notnull"`
}

// SeasonField assigns a tenant field to a season.
type SeasonField struct {
	bun.BaseModel `bun:"table:season_fields,alias:sf"`

	SeasonID uuid.UUID `bun:"season_id,pk,type:uuid"`
	FieldID  uuid.UUID `bun:"field_id,pk,type:uuid"`
}

// Timeslot is an open start time on a field. A null agegroup is shared.
type Timeslot struct {
	bun.BaseModel `bun:"table:timeslots,alias:ts"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	SeasonID   uuid.UUID  `bun:"season_id,type:uuid,notnull"`
	AgegroupID *uuid.UUID `bun:"agegroup_id,type:uuid"`
	FieldID    uuid.UUID  `bun:"field_id,type:uuid,notnull"`
	StartsAt   time.Time  `bun:"starts_at,notnull"`
}

// Pairing is a fixture template row. A null season marks a template shared by
// every season.
type Pairing struct {
	bun.BaseModel `bun:"table:pairings,alias:p"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	SeasonID   *uuid.UUID `bun:"season_id,type:uuid"`
	TeamCount  int        `bun:"team_count,notnull"`
	Round      int        `bun:"round,notnull"`
	GameNumber int        `bun:"game_number,notnull"`
	T1Type     string     `bun:"t1_type,notnull,default:'T'"`
	T1No       int        `bun:"t1_no,notnull"`
	T2Type     string     `bun:"t2_type,notnull,default:'T'"`
	T2No       int        `bun:"t2_no,notnull"`
}

type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	SeasonID   uuid.UUID  `bun:"season_id,type:uuid,notnull"`
	LeagueID   uuid.UUID  `bun:"league_id,type:uuid,notnull"`
	AgegroupID uuid.UUID  `bun:"agegroup_id,type:uuid,notnull"`
	DivisionID uuid.UUID  `bun:"division_id,type:uuid,notnull"`
	FieldID    uuid.UUID  `bun:"field_id,type:uuid,notnull"`
	GameDate   time.Time  `bun:"game_date,notnull"`
	Round      int        `bun:"round,notnull"`
	GameNumber int        `bun:"game_number,notnull"`
	T1Type     string     `bun:"t1_type,notnull"`
	T1No       int        `bun:"t1_no,notnull"`
	T1ID       *uuid.UUID `bun:"t1_id,type:uuid"`
	T2Type     string     `bun:"t2_type,notnull"`
	T2No       int        `bun:"t2_no,notnull"`
	T2ID       *uuid.UUID `bun:"t2_id,type:uuid"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// BracketSeed points a bracket slot at the game that decides it.
type BracketSeed struct {
	bun.BaseModel `bun:"table:bracket_seeds,alias:bs"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	GameID     uuid.UUID  `bun:"game_id,type:uuid,notnull"`
	DivisionID uuid.UUID  `bun:"division_id,type:uuid,notnull"`
	SeedNo     int        `bun:"seed_no,notnull"`
	TeamID     *uuid.UUID `bun:"team_id,type:uuid"`
}

// DeviceGameLink maps a scoreboard device to the game it displays.
type DeviceGameLink struct {
	bun.BaseModel `bun:"table:device_game_links,alias:dgl"`

	ID       uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	DeviceID string    `bun:"device_id,notnull"`
	GameID   uuid.UUID `bun:"game_id,type:uuid,notnull"`
}

// SourceCandidate is a prior season that can seed a build.
type SourceCandidate struct {
	SeasonID           uuid.UUID `bun:"season_id" json:"seasonId"`
	Name               string    `bun:"name" json:"name"`
	Path               string    `bun:"path" json:"path"`
	Year               int       `bun:"year" json:"year"`
	ScheduledGameCount int       `bun:"scheduled_game_count" json:"scheduledGameCount"`
}

// DivisionSummaryRow is a division that has games in a season.
type DivisionSummaryRow struct {
	AgegroupName string `bun:"agegroup_name"`
	DivisionName string `bun:"division_name"`
	TeamCount    int    `bun:"team_count"`
	GameCount    int    `bun:"game_count"`
}

// DivisionRow is a division of a season with its league and active team count.
type DivisionRow struct {
	ID            uuid.UUID `bun:"id"`
	LeagueID      uuid.UUID `bun:"league_id"`
	AgegroupID    uuid.UUID `bun:"agegroup_id"`
	AgegroupName  string    `bun:"agegroup_name"`
	Name          string    `bun:"name"`
	PoolFormat    string    `bun:"pool_format"`
	GamesPerPair  int       `bun:"games_per_pair"`
	MinGapMinutes int       `bun:"min_gap_minutes"`
	TeamCount     int       `bun:"team_count"`
}

// TeamRow is a roster entry with its division names.
type TeamRow struct {
	ID           uuid.UUID `bun:"id"`
	DivisionID   uuid.UUID `bun:"division_id"`
	AgegroupName string    `bun:"agegroup_name"`
	DivisionName string    `bun:"division_name"`
	Name         string    `bun:"name"`
	DivRank      int       `bun:"div_rank"`
	Active       bool      `bun:"active"`
}

// TimeslotRow is a timeslot with its field name.
type TimeslotRow struct {
	ID         uuid.UUID  `bun:"id"`
	AgegroupID *uuid.UUID `bun:"agegroup_id"`
	FieldID    uuid.UUID  `bun:"field_id"`
	FieldName  string     `bun:"field_name"`
	StartsAt   time.Time  `bun:"starts_at"`
}

// GameRow is a stored game with the names the engine reports.
type GameRow struct {
	ID           uuid.UUID  `bun:"id"`
	AgegroupID   uuid.UUID  `bun:"agegroup_id"`
	AgegroupName string     `bun:"agegroup_name"`
	DivisionID   uuid.UUID  `bun:"division_id"`
	DivisionName string     `bun:"division_name"`
	FieldID      uuid.UUID  `bun:"field_id"`
	FieldName    string     `bun:"field_name"`
	GameDate     time.Time  `bun:"game_date"`
	Round        int        `bun:"round"`
	GameNumber   int        `bun:"game_number"`
	T1Type       string     `bun:"t1_type"`
	T1No         int        `bun:"t1_no"`
	T1ID         *uuid.UUID `bun:"t1_id"`
	T2Type       string     `bun:"t2_type"`
	T2No         int        `bun:"t2_no"`
	T2ID         *uuid.UUID `bun:"t2_id"`
}
