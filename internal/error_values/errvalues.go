package errorvalues

import "errors"

// Validation errors: bad input shape or range. Raised before any repository call.
var (
	ErrEmptyName          = errors.New("quest name cannot be blank")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
	ErrPriorityOutOfRange = errors.New("priority must be between 1 and 4")
	ErrInvalidStatus      = errors.New("unknown quest status")
)

// Not-found errors: operation references an unknown id.
var (
	ErrQuestNotFound       = errors.New("quest doesn't exist")
	ErrSubtaskNotFound     = errors.New("subtask doesn't exist")
	ErrProgressionNotFound = errors.New("user progression doesn't exist")
	ErrWrongOwner          = errors.New("quest has different owner")
)

// Domain errors: invalid leveling/streak arguments.
var (
	ErrNegativeExperience = errors.New("experience amount cannot be negative")
	ErrInvalidLevel       = errors.New("level must be at least 1")
)

var (
	ErrInvalidToken = errors.New("invalid auth token")
)
