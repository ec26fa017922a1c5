package db

import "errors"

// Domain errors. Precondition violations carry distinct values so callers
// can tell the user exactly which check failed; the HTTP layer maps them
// onto status codes.
var (
	ErrNotFound = errors.New("record not found")

	// Sprint lifecycle
	ErrDurationRange       = errors.New("sprint duration must be at least one working day")
	ErrPlannedSprintExists = errors.New("a planned sprint already exists for this project")
	ErrActiveSprintExists  = errors.New("another sprint is already in progress for this project")
	ErrSprintNoStories     = errors.New("the sprint has no assigned user stories")
	ErrSprintNoMembers     = errors.New("the sprint has no members")
	ErrSprintNotPlanned    = errors.New("the sprint is not in the planned state")
	ErrSprintNotStarted    = errors.New("the sprint is not in progress")
	ErrSprintClosed        = errors.New("the sprint is finished or cancelled and cannot be modified")
	ErrSprintInProgress    = errors.New("the sprint is in progress")

	// Capacity ledger
	ErrWorkloadRange       = errors.New("workload must be between 1 and 12 hours per day")
	ErrNotProjectMember    = errors.New("user is not a member of the project")
	ErrAlreadySprintMember = errors.New("user is already a member of the sprint")
	ErrProductOwnerOnly    = errors.New("a user holding only the Product Owner role cannot be added to a sprint")

	// Stories
	ErrStoryClosed       = errors.New("the user story is finished or cancelled and cannot be modified")
	ErrColumnRange       = errors.New("column is out of range for the story type")
	ErrMemberNotInSprint = errors.New("the sprint member does not belong to the story's sprint")

	// Calendar
	ErrHolidayExists     = errors.New("a holiday already exists on that date")
	ErrHolidayRunTooLong = errors.New("too many consecutive non-working days")

	// History
	ErrSnapshotVersion  = errors.New("unsupported history snapshot version")
	ErrSnapshotTypeGone = errors.New("the snapshot references a story type that no longer exists in the project")
)
