package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// fakeGoals is an in-memory GoalRepository. Columns listed in missing behave
// like columns absent from an older schema.
type fakeGoals struct {
	mu      sync.Mutex
	goals   map[string]*model.Goal
	order   []string
	missing map[string]bool
	updates []model.Fields

	// failUpdates makes the next n updates fail with errStoreDown.
	failUpdates int
	failDelete  bool
	// entered receives a value when an Update starts. gate, when set,
	// blocks each Update until it is readable.
	entered chan struct{}
	gate    chan struct{}
}

func newFakeGoals(goals ...*model.Goal) *fakeGoals {
	f := &fakeGoals{goals: make(map[string]*model.Goal), missing: make(map[string]bool)}
	for _, g := range goals {
		f.goals[g.ID] = g.Clone()
		f.order = append(f.order, g.ID)
	}
	return f
}

func (f *fakeGoals) Create(_ context.Context, g *model.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals[g.ID] = g.Clone()
	f.order = append(f.order, g.ID)
	return nil
}

func (f *fakeGoals) ByID(_ context.Context, id string) (*model.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok {
		return nil, repository.ErrGoalNotFound
	}
	return g.Clone(), nil
}

func (f *fakeGoals) Goals(_ context.Context, filter repository.GoalFilter) ([]*model.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*model.Goal{}
	for _, id := range f.order {
		g := f.goals[id]
		if filter.UserID != "" && g.UserID != filter.UserID {
			continue
		}
		if filter.GroupIDs != nil && (g.GroupID == nil || !slices.Contains(filter.GroupIDs, *g.GroupID)) {
			continue
		}
		if filter.Status != "" && g.ApprovalStatus != filter.Status {
			continue
		}
		out = append(out, g.Clone())
	}
	return out, nil
}

func (f *fakeGoals) Update(_ context.Context, id string, fields model.Fields) (*model.Goal, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdates > 0 {
		f.failUpdates--
		return nil, errStoreDown
	}
	for col := range fields {
		if f.missing[col] {
			return nil, repository.ErrUnknownField
		}
	}
	g, ok := f.goals[id]
	if !ok {
		return nil, repository.ErrGoalNotFound
	}

	next := g.Clone()
	for col, v := range fields {
		applyField(next, col, v)
	}
	f.goals[id] = next
	f.updates = append(f.updates, fields)

	return next.Clone(), nil
}

func (f *fakeGoals) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete {
		return errStoreDown
	}
	if _, ok := f.goals[id]; !ok {
		return repository.ErrGoalNotFound
	}
	delete(f.goals, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

func (f *fakeGoals) stored(id string) *model.Goal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.goals[id].Clone()
}

func (f *fakeGoals) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func optString(v any) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func applyField(g *model.Goal, col string, v any) {
	switch col {
	case model.FieldProjectID:
		g.ProjectID = optString(v)
	case model.FieldGroupID:
		g.GroupID = optString(v)
	case model.FieldTitle:
		g.Title = v.(string)
	case model.FieldSpecific:
		g.Specific = v.(string)
	case model.FieldMeasurable:
		g.Measurable = v.(string)
	case model.FieldAchievable:
		g.Achievable = v.(string)
	case model.FieldRelevant:
		g.Relevant = v.(string)
	case model.FieldTimeBoundStart:
		g.TimeBoundStart = v.(time.Time)
	case model.FieldTimeBoundEnd:
		g.TimeBoundEnd = v.(time.Time)
	case model.FieldStartDate:
		g.StartDate = v.(time.Time)
	case model.FieldProgress:
		g.Progress = v.(int)
	case model.FieldApprovalStatus:
		g.ApprovalStatus = model.ApprovalStatus(v.(string))
	case model.FieldTeacherFeedback:
		g.TeacherFeedback = optString(v)
	case model.FieldTeacherID:
		g.TeacherID = optString(v)
	case model.FieldAchieved:
		g.Achieved = v.(bool)
	case model.FieldAchievedAt:
		if v == nil {
			g.AchievedAt = nil
		} else {
			t := v.(time.Time)
			g.AchievedAt = &t
		}
	case model.FieldStartedEarly:
		g.StartedEarly = v.(bool)
	case model.FieldPostponed:
		g.Postponed = v.(bool)
	case model.FieldUpdatedAt:
		g.UpdatedAt = v.(time.Time)
	default:
		panic("unexpected column " + col)
	}
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []lifecycle.Notice
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, notice lifecycle.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *fakeNotifier) kinds() []lifecycle.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []lifecycle.NoticeKind{}
	for _, notice := range n.notices {
		out = append(out, notice.Kind)
	}
	return out
}
