package lifecycle

import (
	"math"
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// ClampProgress rounds half up and clamps to [0, 100].
func ClampProgress(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	v := math.Floor(raw + 0.5)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// SetProgress records a new progress value. Reaching 100 achieves the goal and
// dropping below 100 un-achieves it.
func SetProgress(g *model.Goal, raw float64, now time.Time) Outcome {
	p := ClampProgress(raw)

	next := g.Clone()
	next.Progress = p
	next.UpdatedAt = now

	fields := model.Fields{
		model.FieldProgress:  p,
		model.FieldUpdatedAt: now,
	}

	var notices []Notice

	switch {
	case p == 100 && (!g.Achieved || g.AchievedAt == nil):
		next.Achieved = true
		next.AchievedAt = &now
		fields[model.FieldAchieved] = true
		fields[model.FieldAchievedAt] = now
		if !g.Achieved {
			notices = append(notices, achievedNotice(g))
		}
	case p < 100 && (g.Achieved || g.AchievedAt != nil):
		next.Achieved = false
		next.AchievedAt = nil
		fields[model.FieldAchieved] = false
		fields[model.FieldAchievedAt] = nil
	}

	return Outcome{Goal: next, Fields: fields, Notices: notices}
}
