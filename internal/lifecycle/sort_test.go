package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemcapstone/smartgoals/internal/model"
)

func ids(goals []*model.Goal) []string {
	out := make([]string, len(goals))
	for i, g := range goals {
		out[i] = g.ID
	}
	return out
}

func TestSortByStartDate(t *testing.T) {
	goals := []*model.Goal{
		goal("late", day(9)),
		goal("tie-1", day(2)),
		goal("early", day(1)),
		goal("tie-2", day(2)),
	}

	Sort(BucketTodo, goals)

	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late"}, ids(goals))
}

func TestSortDoneNewestFirst(t *testing.T) {
	at := func(offset int) *model.Goal {
		g := goal("", day(-20))
		ts := day(offset)
		g.Achieved = true
		g.AchievedAt = &ts
		return g
	}

	older := at(-5)
	older.ID = "older"
	newer := at(-1)
	newer.ID = "newer"
	unknown := goal("unknown", day(-20))
	unknown.Achieved = true
	tie := at(-5)
	tie.ID = "tie"

	goals := []*model.Goal{unknown, older, newer, tie}
	Sort(BucketDone, goals)

	assert.Equal(t, []string{"newer", "older", "tie", "unknown"}, ids(goals))
}

func TestCategorizeSortsEachBucket(t *testing.T) {
	goals := []*model.Goal{
		goal("doing-late", day(-1)),
		goal("todo-late", day(8)),
		goal("doing-early", day(-7)),
		goal("todo-early", day(2)),
	}

	b, err := Categorize(goals, now, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"todo-early", "todo-late"}, ids(b.Todo))
	assert.Equal(t, []string{"doing-early", "doing-late"}, ids(b.Doing))
}
