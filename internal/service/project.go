package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

type ProjectInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
	GroupID     string `json:"group_id"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type ProjectService struct {
	repo      repository.ProjectRepository
	groupRepo repository.GroupRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	now       lifecycle.Clock
}

func NewProjectService(repo repository.ProjectRepository, groupRepo repository.GroupRepository, comments repository.CommentRepository, validator *validation.Validator) *ProjectService {
	return &ProjectService{
		repo:      repo,
		groupRepo: groupRepo,
		comments:  comments,
		validator: validator,
		now:       time.Now,
	}
}

func (s *ProjectService) Create(ctx context.Context, user *model.User, in ProjectInput) (*model.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.GroupID = strings.TrimSpace(in.GroupID)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	var groupID *string
	if in.GroupID != "" {
		ok, err := s.inGroup(ctx, user, in.GroupID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("group %s: %w", in.GroupID, lifecycle.ErrPermissionDenied)
		}
		groupID = &in.GroupID
	}

	now := s.now()
	project := &model.Project{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		GroupID:     groupID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      model.ProjectStatusInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", storeError(err))
	}

	return project, nil
}

// Projects lists the user's own projects and, for teachers, the projects
// of the groups they teach.
func (s *ProjectService) Projects(ctx context.Context, user *model.User) ([]*model.Project, error) {
	var groupIDs []string
	if user.Role == model.RoleTeacher {
		groups, err := s.groupRepo.TeacherGroups(ctx, user.ID)
		if err != nil {
			return nil, storeError(err)
		}
		groupIDs = lo.Map(groups, func(g *model.Group, _ int) string { return g.ID })
	}

	projects, err := s.repo.Projects(ctx, user.ID, groupIDs)
	if err != nil {
		return nil, storeError(err)
	}
	return projects, nil
}

// Accessible returns the project if the user owns it, belongs to its group
// or teaches that group.
func (s *ProjectService) Accessible(ctx context.Context, user *model.User, id string) (*model.Project, error) {
	project, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if project.UserID == user.ID || user.Role == model.RoleAdmin {
		return project, nil
	}
	if project.GroupID != nil {
		ok, err := s.inGroup(ctx, user, *project.GroupID)
		if err != nil {
			return nil, err
		}
		if ok {
			return project, nil
		}
	}

	return nil, fmt.Errorf("project %s: %w", id, lifecycle.ErrPermissionDenied)
}

func (s *ProjectService) SetStatus(ctx context.Context, user *model.User, id, status string) error {
	if status != model.ProjectStatusInProgress && status != model.ProjectStatusCompleted {
		return lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "status", Error: "must be in_progress or completed"})
	}

	project, err := s.repo.ByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if project.UserID != user.ID {
		return fmt.Errorf("only the owner can change project %s: %w", id, lifecycle.ErrPermissionDenied)
	}

	return storeError(s.repo.UpdateStatus(ctx, id, status))
}

// GroupProjects lists the projects filed under a group the user belongs to
// or teaches.
func (s *ProjectService) GroupProjects(ctx context.Context, user *model.User, groupID string) ([]*model.Project, error) {
	ok, err := s.inGroup(ctx, user, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, lifecycle.ErrPermissionDenied)
	}

	projects, err := s.repo.GroupProjects(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	return projects, nil
}

// Comments lists a project's comments oldest first.
func (s *ProjectService) Comments(ctx context.Context, user *model.User, projectID string) ([]*model.ProjectComment, error) {
	if _, err := s.Accessible(ctx, user, projectID); err != nil {
		return nil, err
	}

	comments, err := s.comments.Comments(ctx, projectID)
	if err != nil {
		return nil, storeError(err)
	}
	return comments, nil
}

// AddComment posts teacher feedback on a project the teacher can see.
func (s *ProjectService) AddComment(ctx context.Context, user *model.User, projectID string, in CommentInput) (*model.ProjectComment, error) {
	if !user.IsTeacher() {
		return nil, fmt.Errorf("%w: %w", ErrTeacherOnly, lifecycle.ErrPermissionDenied)
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.Accessible(ctx, user, projectID); err != nil {
		return nil, err
	}

	author := user.Name
	if author == "" {
		author = user.Email
	}
	comment := &model.ProjectComment{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		AuthorID:   user.ID,
		AuthorName: author,
		Content:    in.Content,
		CreatedAt:  s.now(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", storeError(err))
	}

	return comment, nil
}

func (s *ProjectService) inGroup(ctx context.Context, user *model.User, groupID string) (bool, error) {
	group, err := s.groupRepo.ByID(ctx, groupID)
	if err != nil {
		return false, storeError(err)
	}
	if group.TeacherID == user.ID || user.Role == model.RoleAdmin {
		return true, nil
	}

	ok, err := s.groupRepo.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return false, storeError(err)
	}
	return ok, nil
}
