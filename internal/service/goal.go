package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

// GoalInput is a new SMART goal as submitted by a student.
type GoalInput struct {
	ProjectID      string `json:"project_id" validate:"required"`
	Title          string `json:"title" validate:"required,max=100"`
	Specific       string `json:"specific" validate:"required"`
	Measurable     string `json:"measurable" validate:"required"`
	Achievable     string `json:"achievable" validate:"required"`
	Relevant       string `json:"relevant" validate:"required"`
	TimeBoundStart string `json:"time_bound_start" validate:"required,isodate"`
	TimeBoundEnd   string `json:"time_bound_end" validate:"required,isodate"`
	// StartDate defaults to TimeBoundStart.
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
}

func (in *GoalInput) trim() {
	for _, s := range []*string{
		&in.ProjectID, &in.Title, &in.Specific, &in.Measurable, &in.Achievable,
		&in.Relevant, &in.TimeBoundStart, &in.TimeBoundEnd, &in.StartDate,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// GoalPatch is an edit request. Absent fields are left unchanged.
type GoalPatch struct {
	ProjectID      *string `json:"project_id"`
	Title          *string `json:"title" validate:"omitempty,max=100"`
	Specific       *string `json:"specific"`
	Measurable     *string `json:"measurable"`
	Achievable     *string `json:"achievable"`
	Relevant       *string `json:"relevant"`
	TimeBoundStart *string `json:"time_bound_start" validate:"omitempty,isodate"`
	TimeBoundEnd   *string `json:"time_bound_end" validate:"omitempty,isodate"`
	StartDate      *string `json:"start_date" validate:"omitempty,isodate"`
}

type GoalService struct {
	repo      repository.GoalRepository
	projects  *ProjectService
	validator *validation.Validator
	now       lifecycle.Clock
}

func NewGoalService(repo repository.GoalRepository, projects *ProjectService, validator *validation.Validator) *GoalService {
	return &GoalService{
		repo:      repo,
		projects:  projects,
		validator: validator,
		now:       time.Now,
	}
}

// Create stores a new pending goal under one of the user's projects. The
// goal inherits the project's group.
func (s *GoalService) Create(ctx context.Context, user *model.User, in GoalInput) (*model.Goal, error) {
	in.trim()
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	start, err := lifecycle.ParseDate(in.TimeBoundStart)
	if err != nil {
		return nil, err
	}
	end, err := lifecycle.ParseDate(in.TimeBoundEnd)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, lifecycle.NewValidationError(lifecycle.ErrEndBeforeStart,
			lifecycle.FieldError{Field: model.FieldTimeBoundEnd, Error: lifecycle.ErrEndBeforeStart.Error()})
	}
	startDate := start
	if in.StartDate != "" {
		if startDate, err = lifecycle.ParseDate(in.StartDate); err != nil {
			return nil, err
		}
	}

	project, err := s.projects.Accessible(ctx, user, in.ProjectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	goal := &model.Goal{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		ProjectID:      &project.ID,
		GroupID:        project.GroupID,
		Title:          in.Title,
		Specific:       in.Specific,
		Measurable:     in.Measurable,
		Achievable:     in.Achievable,
		Relevant:       in.Relevant,
		TimeBoundStart: start,
		TimeBoundEnd:   end,
		StartDate:      startDate,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", storeError(err))
	}

	return goal, nil
}

// Changes validates a patch and turns it into lifecycle changes. A new
// project must be accessible to the user and brings its group along.
func (s *GoalService) Changes(ctx context.Context, user *model.User, patch GoalPatch) (lifecycle.Changes, error) {
	if err := s.validator.Struct(patch); err != nil {
		return lifecycle.Changes{}, err
	}

	c := lifecycle.Changes{
		Title:      patch.Title,
		Specific:   patch.Specific,
		Measurable: patch.Measurable,
		Achievable: patch.Achievable,
		Relevant:   patch.Relevant,
	}

	dates := []struct {
		src *string
		dst **time.Time
	}{
		{patch.TimeBoundStart, &c.TimeBoundStart},
		{patch.TimeBoundEnd, &c.TimeBoundEnd},
		{patch.StartDate, &c.StartDate},
	}
	for _, d := range dates {
		if d.src == nil {
			continue
		}
		t, err := lifecycle.ParseDate(*d.src)
		if err != nil {
			return lifecycle.Changes{}, err
		}
		*d.dst = &t
	}

	if patch.ProjectID != nil {
		project, err := s.projects.Accessible(ctx, user, strings.TrimSpace(*patch.ProjectID))
		if err != nil {
			return lifecycle.Changes{}, err
		}
		c.ProjectID = &project.ID
		c.GroupID = project.GroupID
	}

	return c, nil
}

// Export returns every goal the user owns, oldest first.
func (s *GoalService) Export(ctx context.Context, user *model.User) ([]*model.Goal, error) {
	goals, err := s.repo.Goals(ctx, repository.GoalFilter{UserID: user.ID})
	if err != nil {
		return nil, storeError(err)
	}
	return goals, nil
}
