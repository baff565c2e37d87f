package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
)

const flushTimeout = 10 * time.Second

// Notifier delivers notices emitted by goal transitions.
type Notifier interface {
	Notify(ctx context.Context, n lifecycle.Notice) error
}

// Board is one session's view of its goals. It keeps a mirror of the goals
// it has fetched, applies changes to it optimistically and writes them
// through to the repository, rolling back when a write fails.
type Board struct {
	repo      repository.GoalRepository
	notifier  Notifier
	overrides lifecycle.Overrides
	debouncer *Debouncer
	now       lifecycle.Clock

	mu    sync.Mutex
	actor lifecycle.Actor
	order []string
	// mirror holds what the session sees, committed what the store last
	// confirmed.
	mirror    map[string]*model.Goal
	committed map[string]*model.Goal
	seq       map[string]uint64
	writing   map[string]int
	syncErrs  map[string]error
}

func NewBoard(repo repository.GoalRepository, notifier Notifier, overrides lifecycle.Overrides, debounce time.Duration, now lifecycle.Clock) *Board {
	if overrides == nil {
		overrides = lifecycle.NewOverrideSet()
	}
	if now == nil {
		now = time.Now
	}

	return &Board{
		repo:      repo,
		notifier:  notifier,
		overrides: overrides,
		debouncer: NewDebouncer(debounce),
		now:       now,
		mirror:    make(map[string]*model.Goal),
		committed: make(map[string]*model.Goal),
		seq:       make(map[string]uint64),
		writing:   make(map[string]int),
		syncErrs:  make(map[string]error),
	}
}

func (b *Board) Actor() lifecycle.Actor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.actor
}

func (b *Board) setActor(a lifecycle.Actor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actor = a
}

// ScopeFilter narrows a goal query to what the actor may see. Students see
// their own goals, teachers the goals of the groups they teach.
func ScopeFilter(a lifecycle.Actor, filter repository.GoalFilter) repository.GoalFilter {
	switch a.Role {
	case model.RoleAdmin:
		return filter
	case model.RoleTeacher:
		filter.UserID = ""
		filter.GroupIDs = a.Groups
		if filter.GroupIDs == nil {
			filter.GroupIDs = []string{}
		}
	default:
		filter.UserID = a.UserID
		filter.GroupIDs = nil
	}
	return filter
}

// Load fetches the actor's goals and refreshes the mirror. Goals with a
// write still pending keep their optimistic values.
func (b *Board) Load(ctx context.Context, filter repository.GoalFilter) (lifecycle.Buckets, error) {
	goals, err := b.repo.Goals(ctx, ScopeFilter(b.Actor(), filter))
	if err != nil {
		return lifecycle.Buckets{}, storeError(err)
	}

	b.mu.Lock()
	order := make([]string, 0, len(goals))
	for _, g := range goals {
		order = append(order, g.ID)
		b.committed[g.ID] = g
		if _, ok := b.mirror[g.ID]; ok && b.busy(g.ID) {
			continue
		}
		b.mirror[g.ID] = g
	}
	b.order = order
	for id := range b.mirror {
		if !slices.Contains(order, id) && !b.busy(id) {
			delete(b.mirror, id)
			delete(b.committed, id)
		}
	}
	b.mu.Unlock()

	return b.Buckets()
}

// busy reports whether id has a write queued or in flight. Callers hold mu.
func (b *Board) busy(id string) bool {
	return b.writing[id] > 0 || b.debouncer.Pending(id)
}

// Buckets classifies and sorts the mirror in fetch order.
func (b *Board) Buckets() (lifecycle.Buckets, error) {
	b.mu.Lock()
	goals := make([]*model.Goal, 0, len(b.order))
	for _, id := range b.order {
		if g, ok := b.mirror[id]; ok {
			goals = append(goals, g.Clone())
		}
	}
	b.mu.Unlock()

	return lifecycle.Categorize(goals, b.now(), b.overrides)
}

// Classify places a single goal using this session's overrides.
func (b *Board) Classify(g *model.Goal) lifecycle.Bucket {
	return lifecycle.Classify(g, b.now(), b.overrides)
}

func (b *Board) Goal(ctx context.Context, id string) (*model.Goal, error) {
	g, err := b.refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanView(g, b.Actor()); err != nil {
		return nil, err
	}
	return g, nil
}

// SyncError returns the last failed write for id, if the mirror was rolled
// back because of it.
func (b *Board) SyncError(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncErrs[id]
}

// Flush writes queued progress changes now.
func (b *Board) Flush() {
	b.debouncer.Flush()
}

// ensure returns the mirrored goal, fetching it when the board has not
// seen it yet.
func (b *Board) ensure(ctx context.Context, id string) (*model.Goal, error) {
	b.mu.Lock()
	g, ok := b.mirror[id]
	b.mu.Unlock()
	if ok {
		return g.Clone(), nil
	}

	g, err := b.repo.ByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.mirror[id]; ok {
		return cur.Clone(), nil
	}
	b.mirror[id] = g
	b.committed[id] = g
	return g.Clone(), nil
}

// refresh reloads a goal before it is changed so checks such as the edit
// lock see writes made by other sessions.
func (b *Board) refresh(ctx context.Context, id string) (*model.Goal, error) {
	g, err := b.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			b.forget(id)
		}
		return nil, storeError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed[id] = g
	if _, ok := b.mirror[id]; !ok || !b.busy(id) {
		b.mirror[id] = g
	}
	return b.mirror[id].Clone(), nil
}

type mutation struct {
	check func(g *model.Goal, a lifecycle.Actor) error
	apply func(g *model.Goal, a lifecycle.Actor, now time.Time) (lifecycle.Outcome, error)
	// fromCommitted computes the outcome from the last stored state instead
	// of the mirror.
	fromCommitted bool
	// fallback handles a store that lacks the written columns. When set,
	// ErrUnknownField is not a failure.
	fallback func(id string)
	after    func(id string)
}

func (b *Board) mutate(ctx context.Context, id string, m mutation) (*model.Goal, error) {
	if _, err := b.refresh(ctx, id); err != nil {
		return nil, err
	}

	b.mu.Lock()
	base := b.mirror[id]
	if m.fromCommitted {
		base = b.committed[id]
	}
	if base == nil {
		// Dropped by a concurrent Load or Delete.
		b.mu.Unlock()
		return nil, storeError(repository.ErrGoalNotFound)
	}
	if err := m.check(base, b.actor); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	out, err := m.apply(base, b.actor, b.now())
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.mirror[id] = out.Goal
	b.seq[id]++
	seq := b.seq[id]
	b.writing[id]++
	b.mu.Unlock()

	stored, err := b.repo.Update(ctx, id, out.Fields)

	b.mu.Lock()
	b.writing[id]--
	if b.writing[id] == 0 {
		delete(b.writing, id)
	}
	latest := b.seq[id] == seq

	if err != nil && m.fallback != nil && errors.Is(err, repository.ErrUnknownField) {
		m.fallback(id)
		if latest {
			b.mirror[id] = b.committed[id]
			delete(b.syncErrs, id)
		}
		g := b.mirror[id].Clone()
		b.mu.Unlock()
		slog.Warn("goal schedule columns missing, keeping state for this session", "goal_id", id)
		return g, nil
	}

	if err != nil {
		if latest {
			b.mirror[id] = b.committed[id]
			b.syncErrs[id] = err
		}
		b.mu.Unlock()
		slog.Error("failed to write goal", "error", err, "goal_id", id)
		if errors.Is(err, repository.ErrGoalNotFound) {
			b.forget(id)
		}
		return nil, storeError(err)
	}

	b.committed[id] = stored
	if latest {
		b.mirror[id] = stored
		delete(b.syncErrs, id)
	}
	g := b.mirror[id].Clone()
	b.mu.Unlock()

	if m.after != nil {
		m.after(id)
	}
	b.notify(ctx, out.Notices)

	return g, nil
}

func (b *Board) notify(ctx context.Context, notices []lifecycle.Notice) {
	if b.notifier == nil {
		return
	}
	for _, n := range notices {
		if err := b.notifier.Notify(ctx, n); err != nil {
			slog.Error("failed to send goal notification", "error", err, "goal_id", n.GoalID, "kind", n.Kind)
		}
	}
}

func (b *Board) StartEarly(ctx context.Context, id string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanSchedule,
		apply: func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.StartEarly(g, now)
		},
		fallback: b.overrides.MarkStartedEarly,
		after:    b.overrides.Forget,
	})
}

func (b *Board) Postpone(ctx context.Context, id string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanSchedule,
		apply: func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.Postpone(g, now, b.overrides)
		},
		fallback: b.overrides.MarkPostponed,
		after:    b.overrides.Forget,
	})
}

func (b *Board) Approve(ctx context.Context, id, feedback string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanReview,
		apply: func(g *model.Goal, a lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.Approve(g, a.UserID, feedback, now)
		},
	})
}

func (b *Board) Reject(ctx context.Context, id, feedback string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanReview,
		apply: func(g *model.Goal, a lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.Reject(g, a.UserID, feedback, now)
		},
	})
}

func progress(raw float64) func(*model.Goal, lifecycle.Actor, time.Time) (lifecycle.Outcome, error) {
	return func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
		return lifecycle.SetProgress(g, raw, now), nil
	}
}

// SetProgress writes progress immediately, superseding any queued value.
func (b *Board) SetProgress(ctx context.Context, id string, raw float64) (*model.Goal, error) {
	b.debouncer.Cancel(id)
	return b.mutate(ctx, id, mutation{
		check:         lifecycle.CanSchedule,
		apply:         progress(raw),
		fromCommitted: true,
	})
}

// QueueProgress applies progress to the mirror right away and writes it once
// no newer value arrives within the debounce window.
func (b *Board) QueueProgress(ctx context.Context, id string, raw float64) (*model.Goal, error) {
	if _, err := b.ensure(ctx, id); err != nil {
		return nil, err
	}

	b.mu.Lock()
	base := b.mirror[id]
	if base == nil {
		b.mu.Unlock()
		return nil, storeError(repository.ErrGoalNotFound)
	}
	if err := lifecycle.CanSchedule(base, b.actor); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	out := lifecycle.SetProgress(base, raw, b.now())
	b.mirror[id] = out.Goal
	// Older writes still in flight must not overwrite this value.
	b.seq[id]++
	g := out.Goal.Clone()
	b.mu.Unlock()

	b.debouncer.Push(id, func() {
		b.flushProgress(id, raw)
	})

	return g, nil
}

func (b *Board) flushProgress(id string, raw float64) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	_, err := b.mutate(ctx, id, mutation{
		check:         lifecycle.CanSchedule,
		apply:         progress(raw),
		fromCommitted: true,
	})
	if err != nil {
		slog.Error("failed to save progress", "error", err, "goal_id", id)
	}
}

func (b *Board) MarkAchieved(ctx context.Context, id string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanReview,
		apply: func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.MarkAchieved(g, now)
		},
	})
}

func (b *Board) UnmarkAchieved(ctx context.Context, id string) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanReview,
		apply: func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.UnmarkAchieved(g, now)
		},
	})
}

func (b *Board) Edit(ctx context.Context, id string, c lifecycle.Changes) (*model.Goal, error) {
	return b.mutate(ctx, id, mutation{
		check: lifecycle.CanEdit,
		apply: func(g *model.Goal, _ lifecycle.Actor, now time.Time) (lifecycle.Outcome, error) {
			return lifecycle.Edit(g, c, now)
		},
	})
}

// Delete removes the goal from the board first and puts it back if the
// store refuses.
func (b *Board) Delete(ctx context.Context, id string) error {
	if _, err := b.refresh(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	g := b.mirror[id]
	if g == nil {
		b.mu.Unlock()
		return storeError(repository.ErrGoalNotFound)
	}
	if err := lifecycle.CanDelete(g, b.actor); err != nil {
		b.mu.Unlock()
		return err
	}
	pos := slices.Index(b.order, id)
	if pos >= 0 {
		b.order = slices.Delete(b.order, pos, pos+1)
	}
	delete(b.mirror, id)
	b.seq[id]++
	b.mu.Unlock()

	b.debouncer.Cancel(id)

	err := b.repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrGoalNotFound) {
		b.mu.Lock()
		b.mirror[id] = g
		if pos >= 0 {
			b.order = slices.Insert(b.order, min(pos, len(b.order)), id)
		}
		b.mu.Unlock()
		slog.Error("failed to delete goal", "error", err, "goal_id", id)
		return storeError(err)
	}

	b.forget(id)
	return storeError(err)
}

func (b *Board) forget(id string) {
	b.mu.Lock()
	delete(b.mirror, id)
	delete(b.committed, id)
	delete(b.seq, id)
	delete(b.syncErrs, id)
	if pos := slices.Index(b.order, id); pos >= 0 {
		b.order = slices.Delete(b.order, pos, pos+1)
	}
	b.mu.Unlock()
	b.overrides.Forget(id)
}
