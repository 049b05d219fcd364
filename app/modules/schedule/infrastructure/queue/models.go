package schedulequeue

import (
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/google/uuid"
	"github.com/riverqueue/river/rivertype"
)

// QueueName is the River queue the schedule jobs run on.
const QueueName = "schedule"

// AutoBuildJob builds a season in the background and publishes the outcome.
// Only the season takes part in uniqueness, so one build per season can be
// queued or running at a time.
type AutoBuildJob struct {
	SeasonID      uuid.UUID                       `json:"season_id" river:"unique"`
	Request       scheduledomain.AutoBuildRequest `json:"request"`
	RequestedBy   string                          `json:"requested_by,omitempty"`
	CorrelationID string                          `json:"correlation_id,omitempty"`
}

func (AutoBuildJob) Kind() string { return "schedule_auto_build" }

// QaValidationJob runs the QA checks for a season and publishes the counts.
type QaValidationJob struct {
	SeasonID      uuid.UUID `json:"season_id" river:"unique"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (QaValidationJob) Kind() string { return "schedule_qa_validation" }

// EnqueueResult describes an insert. Duplicate is set when an equivalent job
// was already queued or running and no new job was created.
type EnqueueResult struct {
	JobID     int64     `json:"job_id"`
	Duplicate bool      `json:"duplicate"`
	QueuedAt  time.Time `json:"queued_at"`
}

// activeStates are the states in which a second job for the same season is
// rejected. Completed and discarded jobs do not block a new build.
var activeStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateRunning,
	rivertype.JobStateScheduled,
}
