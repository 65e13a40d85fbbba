package goals

import (
	"errors"
	"fmt"
	"time"
)

var ErrIllegalTransition = errors.New("illegal goal status transition")

// Transition applies a status change in place. Only active goals can move,
// and only to one of the terminal states. Completing an already-completed
// goal is a no-op so that CompletedAt is never overwritten.
func Transition(goal *Goal, to Status, now time.Time) error {
	if goal.Status == to {
		return nil
	}

	if goal.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, goal.Status, to)
	}

	switch to {
	case StatusCompleted:
		goal.Status = StatusCompleted
		if goal.CompletedAt == nil {
			completedAt := now
			goal.CompletedAt = &completedAt
		}
	case StatusAbandoned:
		goal.Status = StatusAbandoned
	case StatusExpired:
		goal.Status = StatusExpired
	default:
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, goal.Status, to)
	}

	return nil
}

// ShouldExpire reports whether the deadline sweep has to transition the goal.
// Terminal goals are never expired, regardless of deadline.
func ShouldExpire(goal *Goal, now time.Time) bool {
	if goal.Status != StatusActive {
		return false
	}
	if goal.Deadline.IsZero() {
		return false
	}
	return goal.Deadline.Before(now)
}
