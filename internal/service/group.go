package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

const codeAttempts = 5

type JoinInput struct {
	Code string `json:"code" validate:"required,joincode"`
}

type GroupService struct {
	repo      repository.GroupRepository
	validator *validation.Validator
	now       lifecycle.Clock
}

func NewGroupService(repo repository.GroupRepository, validator *validation.Validator) *GroupService {
	return &GroupService{
		repo:      repo,
		validator: validator,
		now:       time.Now,
	}
}

// Create opens a new group for a teacher with a fresh join code.
func (s *GroupService) Create(ctx context.Context, user *model.User, name string) (*model.Group, error) {
	if !user.IsTeacher() {
		return nil, fmt.Errorf("%w: %w", ErrTeacherOnly, lifecycle.ErrPermissionDenied)
	}

	name, err := validation.NormalizeName(name)
	if err != nil {
		return nil, lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "name", Error: err.Error()})
	}

	group := &model.Group{
		ID:        uuid.New().String(),
		Name:      name,
		TeacherID: user.ID,
		CreatedAt: s.now(),
	}

	for range codeAttempts {
		group.Code, err = validation.NewJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		err = s.repo.Create(ctx, group)
		if !errors.Is(err, repository.ErrDuplicateCode) {
			break
		}
		slog.Warn("join code collision, retrying", "code", group.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", storeError(err))
	}

	return group, nil
}

// Join adds the user to the group with the given code.
func (s *GroupService) Join(ctx context.Context, user *model.User, in JoinInput) (*model.Group, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	group, err := s.repo.ByCode(ctx, validation.NormalizeJoinCode(in.Code))
	if err != nil {
		return nil, storeError(err)
	}
	if group.TeacherID == user.ID {
		return nil, lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "code", Error: "you teach this group"})
	}

	err = s.repo.AddMember(ctx, group.ID, user.ID, s.now())
	if errors.Is(err, repository.ErrAlreadyMember) {
		return nil, lifecycle.NewValidationError(err, lifecycle.FieldError{Field: "code", Error: err.Error()})
	}
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("student joined group", "user_id", user.ID, "group_id", group.ID)
	return group, nil
}

func (s *GroupService) Leave(ctx context.Context, user *model.User, groupID string) error {
	return storeError(s.repo.RemoveMember(ctx, groupID, user.ID))
}

// Groups lists the groups a teacher runs or a student belongs to.
func (s *GroupService) Groups(ctx context.Context, user *model.User) ([]*model.Group, error) {
	var (
		groups []*model.Group
		err    error
	)
	if user.IsTeacher() {
		groups, err = s.repo.TeacherGroups(ctx, user.ID)
	} else {
		groups, err = s.repo.MemberGroups(ctx, user.ID)
	}
	if err != nil {
		return nil, storeError(err)
	}
	return groups, nil
}

// Managed returns the group if the user teaches it.
func (s *GroupService) Managed(ctx context.Context, user *model.User, groupID string) (*model.Group, error) {
	group, err := s.repo.ByID(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	if group.TeacherID != user.ID && user.Role != model.RoleAdmin {
		return nil, fmt.Errorf("group %s is not yours: %w", groupID, lifecycle.ErrPermissionDenied)
	}
	return group, nil
}

// Visible returns the group if the user teaches it or is a member.
func (s *GroupService) Visible(ctx context.Context, user *model.User, groupID string) (*model.Group, error) {
	group, err := s.repo.ByID(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	if group.TeacherID == user.ID || user.Role == model.RoleAdmin {
		return group, nil
	}

	ok, err := s.repo.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if !ok {
		return nil, fmt.Errorf("not a member of group %s: %w", groupID, lifecycle.ErrPermissionDenied)
	}
	return group, nil
}

// Roster returns a visible group with its members in join order.
func (s *GroupService) Roster(ctx context.Context, user *model.User, groupID string) (*model.Group, []*model.GroupMember, error) {
	group, err := s.Visible(ctx, user, groupID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.Members(ctx, groupID)
	if err != nil {
		return nil, nil, storeError(err)
	}
	group.MemberCount = len(members)

	return group, members, nil
}
