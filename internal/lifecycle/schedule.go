package lifecycle

import (
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// StartEarly moves a goal into progress before its start date.
func StartEarly(g *model.Goal, now time.Time) (Outcome, error) {
	if g.Achieved {
		return Outcome{}, NewValidationError(ErrGoalAchieved)
	}

	next := g.Clone()
	next.StartedEarly = true
	next.Postponed = false
	next.UpdatedAt = now

	return Outcome{
		Goal: next,
		Fields: model.Fields{
			model.FieldStartedEarly: true,
			model.FieldPostponed:    false,
			model.FieldUpdatedAt:    now,
		},
	}, nil
}

// Postpone sends a goal back to todo. Only goals that were started early or
// whose start date is still ahead can be postponed.
func Postpone(g *model.Goal, now time.Time, o Overrides) (Outcome, error) {
	o = orNone(o)

	if g.Achieved {
		return Outcome{}, NewValidationError(ErrGoalAchieved)
	}
	startedEarly := g.StartedEarly || o.StartedEarly(g.ID)
	if !startedEarly && dueBy(g.StartDate, now) {
		return Outcome{}, NewValidationError(ErrCannotPostpone)
	}

	next := g.Clone()
	next.Postponed = true
	next.StartedEarly = false
	next.UpdatedAt = now

	return Outcome{
		Goal: next,
		Fields: model.Fields{
			model.FieldPostponed:    true,
			model.FieldStartedEarly: false,
			model.FieldUpdatedAt:    now,
		},
	}, nil
}
