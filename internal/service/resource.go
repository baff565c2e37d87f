package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

type ResourceInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Kind        string `json:"kind" validate:"required,oneof=link file template video article other"`
	URL         string `json:"url" validate:"omitempty,url"`
}

type ResourceService struct {
	repo      repository.ResourceRepository
	groups    *GroupService
	files     *FileService
	validator *validation.Validator
	now       lifecycle.Clock
}

func NewResourceService(repo repository.ResourceRepository, groups *GroupService, files *FileService, validator *validation.Validator) *ResourceService {
	return &ResourceService{
		repo:      repo,
		groups:    groups,
		files:     files,
		validator: validator,
		now:       time.Now,
	}
}

func (s *ResourceService) validate(in *ResourceInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Kind = strings.TrimSpace(in.Kind)
	in.URL = strings.TrimSpace(in.URL)
	return s.validator.Struct(in)
}

// Link shares a URL with a group.
func (s *ResourceService) Link(ctx context.Context, user *model.User, groupID string, in ResourceInput) (*model.GroupResource, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if in.Kind == model.ResourceKindFile || in.URL == "" {
		return nil, lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "url", Error: "a link resource needs a url"})
	}
	if _, err := s.groups.Managed(ctx, user, groupID); err != nil {
		return nil, err
	}

	resource := s.newResource(user, groupID, in)
	resource.URL = &in.URL

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", storeError(err))
	}
	return resource, nil
}

// Upload stores a file and shares it with a group.
func (s *ResourceService) Upload(ctx context.Context, user *model.User, groupID string, in ResourceInput, file multipart.File, header *multipart.FileHeader) (*model.GroupResource, error) {
	in.Kind = model.ResourceKindFile
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if !s.files.Enabled() {
		return nil, ErrStorageDisabled
	}
	if _, err := s.groups.Managed(ctx, user, groupID); err != nil {
		return nil, err
	}
	if err := validation.ValidateFile(header, validation.DocumentConstraints, validation.ImageConstraints); err != nil {
		return nil, lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "file", Error: err.Error()})
	}

	resource := s.newResource(user, groupID, in)

	stored, err := s.files.Upload(ctx, user.ID, model.FileOwnerGroupResource, resource.ID, file, header)
	if err != nil {
		return nil, err
	}
	resource.FileID = &stored.ID

	if err := s.repo.Create(ctx, resource); err != nil {
		if delErr := s.files.Delete(ctx, stored.ID); delErr != nil {
			slog.Error("failed to clean up resource file", "error", delErr, "file_id", stored.ID)
		}
		return nil, fmt.Errorf("failed to create resource: %w", storeError(err))
	}

	resource.DownloadURL = s.files.URL(ctx, stored.ID)
	return resource, nil
}

func (s *ResourceService) newResource(user *model.User, groupID string, in ResourceInput) *model.GroupResource {
	return &model.GroupResource{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		TeacherID:   user.ID,
		Title:       in.Title,
		Description: in.Description,
		Kind:        in.Kind,
		CreatedAt:   s.now(),
	}
}

// Resources lists a group's resources, newest first, with download links
// for files.
func (s *ResourceService) Resources(ctx context.Context, user *model.User, groupID string) ([]*model.GroupResource, error) {
	if _, err := s.groups.Visible(ctx, user, groupID); err != nil {
		return nil, err
	}

	resources, err := s.repo.Resources(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}

	for _, r := range resources {
		if r.FileID != nil {
			r.DownloadURL = s.files.URL(ctx, *r.FileID)
		}
	}
	return resources, nil
}

func (s *ResourceService) Delete(ctx context.Context, user *model.User, groupID, id string) error {
	if _, err := s.groups.Managed(ctx, user, groupID); err != nil {
		return err
	}

	resource, err := s.repo.ByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if resource.GroupID != groupID {
		return storeError(repository.ErrResourceNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	if resource.FileID != nil {
		if err := s.files.Delete(ctx, *resource.FileID); err != nil {
			slog.Error("failed to delete resource file", "error", err, "file_id", *resource.FileID)
		}
	}
	return nil
}
