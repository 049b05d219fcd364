// Package scheduleevents defines the schedule module's NATS subjects and
// their JSON payloads.
package scheduleevents

import (
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/google/uuid"
)

// StreamName is the JetStream stream that carries every schedule subject.
const StreamName = "schedule"

// StreamSubjects is the subject filter of StreamName.
const StreamSubjects = "schedule.>"

// Auto-build flow.
const (
	AutoBuildRequestedV1 = "schedule.autobuild.requested.v1"
	AutoBuildQueuedV1    = "schedule.autobuild.queued.v1"
	AutoBuildCompletedV1 = "schedule.autobuild.completed.v1"
	AutoBuildFailedV1    = "schedule.autobuild.failed.v1"
)

// Undo flow.
const (
	UndoRequestedV1 = "schedule.undo.requested.v1"
	UndoCompletedV1 = "schedule.undo.completed.v1"
	UndoFailedV1    = "schedule.undo.failed.v1"
)

// QA flow.
const (
	QaRequestedV1 = "schedule.qa.requested.v1"
	QaCompletedV1 = "schedule.qa.completed.v1"
	QaFailedV1    = "schedule.qa.failed.v1"
)

// AutoBuildRequestedPayloadV1 asks for an asynchronous build.
type AutoBuildRequestedPayloadV1 struct {
	SeasonID    uuid.UUID                       `json:"season_id"`
	Request     scheduledomain.AutoBuildRequest `json:"request"`
	RequestedBy string                          `json:"requested_by,omitempty"`
}

// AutoBuildQueuedPayloadV1 acknowledges that the build job was enqueued.
type AutoBuildQueuedPayloadV1 struct {
	SeasonID uuid.UUID `json:"season_id"`
	JobID    int64     `json:"job_id"`
	// Duplicate is set when a build for the season was already queued.
	Duplicate bool      `json:"duplicate"`
	QueuedAt  time.Time `json:"queued_at"`
}

// QaCounts summarises a QA run by severity.
type QaCounts struct {
	TotalGames int `json:"total_games"`
	Critical   int `json:"critical"`
	Warnings   int `json:"warnings"`
}

// NewQaCounts reduces a QA result to its counts.
func NewQaCounts(qa *scheduledomain.AutoBuildQaResult) QaCounts {
	if qa == nil {
		return QaCounts{}
	}
	return QaCounts{
		TotalGames: qa.TotalGames,
		Critical:   qa.CriticalCount(),
		Warnings:   qa.WarningCount(),
	}
}

// AutoBuildCompletedPayloadV1 reports a finished build and its QA counts.
type AutoBuildCompletedPayloadV1 struct {
	SeasonID uuid.UUID                      `json:"season_id"`
	Result   scheduledomain.AutoBuildResult `json:"result"`
	Qa       QaCounts                       `json:"qa"`
}

// FailedPayloadV1 is shared by every *.failed.v1 subject.
type FailedPayloadV1 struct {
	SeasonID uuid.UUID `json:"season_id"`
	Reason   string    `json:"reason"`
	// Retryable is false for configuration errors.
	Retryable bool `json:"retryable"`
}

// SeasonRequestedPayloadV1 carries the season of undo and QA requests.
type SeasonRequestedPayloadV1 struct {
	SeasonID uuid.UUID `json:"season_id"`
}

type UndoCompletedPayloadV1 struct {
	SeasonID uuid.UUID `json:"season_id"`
	Deleted  int       `json:"deleted"`
}

type QaCompletedPayloadV1 struct {
	SeasonID uuid.UUID                         `json:"season_id"`
	Counts   QaCounts                          `json:"counts"`
	Result   *scheduledomain.AutoBuildQaResult `json:"result"`
}
