package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// Create registers a user. Used by the admin CLI.
func (s *UserService) Create(ctx context.Context, email, name string, role model.Role) (*model.User, error) {
	var fields []lifecycle.FieldError

	email, err := validation.NormalizeEmail(email)
	if err != nil {
		fields = append(fields, lifecycle.FieldError{Field: "email", Error: err.Error()})
	}
	name, err = validation.NormalizeName(name)
	if err != nil {
		fields = append(fields, lifecycle.FieldError{Field: "name", Error: err.Error()})
	}
	if !role.Valid() {
		fields = append(fields, lifecycle.FieldError{Field: "role", Error: "must be student, teacher or admin"})
	}
	if len(fields) > 0 {
		return nil, lifecycle.NewValidationError(nil, fields...)
	}

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, lifecycle.NewValidationError(err, lifecycle.FieldError{Field: "email", Error: err.Error()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", storeError(err))
	}

	return user, nil
}
