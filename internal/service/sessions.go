package service

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
)

// Sessions keeps one Board per user for the life of the process.
type Sessions struct {
	goalRepo  repository.GoalRepository
	groupRepo repository.GroupRepository
	notifier  Notifier
	debounce  time.Duration
	now       lifecycle.Clock

	mu     sync.Mutex
	boards map[string]*Board
}

func NewSessions(goalRepo repository.GoalRepository, groupRepo repository.GroupRepository, notifier Notifier, debounce time.Duration) *Sessions {
	return &Sessions{
		goalRepo:  goalRepo,
		groupRepo: groupRepo,
		notifier:  notifier,
		debounce:  debounce,
		now:       time.Now,
		boards:    make(map[string]*Board),
	}
}

// Board returns the user's board, creating it on first use. The actor is
// refreshed on every call so newly created groups are picked up.
func (s *Sessions) Board(ctx context.Context, user *model.User) (*Board, error) {
	actor, err := s.Actor(ctx, user)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[user.ID]
	if !ok {
		b = NewBoard(s.goalRepo, s.notifier, lifecycle.NewOverrideSet(), s.debounce, s.now)
		s.boards[user.ID] = b
	}
	b.setActor(actor)

	return b, nil
}

func (s *Sessions) Actor(ctx context.Context, user *model.User) (lifecycle.Actor, error) {
	actor := lifecycle.Actor{UserID: user.ID, Role: user.Role}
	if user.Role != model.RoleTeacher {
		return actor, nil
	}

	groups, err := s.groupRepo.TeacherGroups(ctx, user.ID)
	if err != nil {
		return lifecycle.Actor{}, storeError(err)
	}
	actor.Groups = lo.Map(groups, func(g *model.Group, _ int) string {
		return g.ID
	})

	return actor, nil
}

// FlushAll writes every board's queued progress. Used on shutdown.
func (s *Sessions) FlushAll() {
	s.mu.Lock()
	boards := lo.Values(s.boards)
	s.mu.Unlock()

	for _, b := range boards {
		b.Flush()
	}
}
