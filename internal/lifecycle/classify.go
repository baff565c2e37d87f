package lifecycle

import (
	"fmt"
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

type Bucket string

const (
	BucketTodo  Bucket = "todo"
	BucketDoing Bucket = "doing"
	BucketDone  Bucket = "done"
)

// Classify places a goal in exactly one bucket. Rules apply in order:
// achieved goals are done, postponed goals wait in todo, goals that are
// due or were started early are in progress, and everything else is todo.
func Classify(g *model.Goal, now time.Time, o Overrides) Bucket {
	o = orNone(o)

	if g.Achieved {
		return BucketDone
	}
	if g.Postponed || o.Postponed(g.ID) {
		return BucketTodo
	}
	if dueBy(g.StartDate, now) || g.StartedEarly || o.StartedEarly(g.ID) {
		return BucketDoing
	}
	return BucketTodo
}

// Buckets holds the three ordered board columns.
type Buckets struct {
	Todo  []*model.Goal `json:"todo"`
	Doing []*model.Goal `json:"doing"`
	Done  []*model.Goal `json:"done"`
}

func (b Buckets) Len() int {
	return len(b.Todo) + len(b.Doing) + len(b.Done)
}

// In returns the goals of one bucket.
func (b Buckets) In(bucket Bucket) []*model.Goal {
	switch bucket {
	case BucketDoing:
		return b.Doing
	case BucketDone:
		return b.Done
	default:
		return b.Todo
	}
}

// Categorize classifies and sorts goals. A goal without a start date is an
// input error and aborts the whole call.
func Categorize(goals []*model.Goal, now time.Time, o Overrides) (Buckets, error) {
	b := Buckets{
		Todo:  []*model.Goal{},
		Doing: []*model.Goal{},
		Done:  []*model.Goal{},
	}

	for _, g := range goals {
		if g.StartDate.IsZero() {
			return Buckets{}, NewValidationError(
				fmt.Errorf("%w: %s", ErrMissingStartDate, g.ID),
				FieldError{Field: model.FieldStartDate, Error: "start date is required"},
			)
		}

		switch Classify(g, now, o) {
		case BucketDone:
			b.Done = append(b.Done, g)
		case BucketDoing:
			b.Doing = append(b.Doing, g)
		default:
			b.Todo = append(b.Todo, g)
		}
	}

	Sort(BucketTodo, b.Todo)
	Sort(BucketDoing, b.Doing)
	Sort(BucketDone, b.Done)

	return b, nil
}
