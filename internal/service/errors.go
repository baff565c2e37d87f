package service

import (
	"errors"
	"fmt"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/repository"
)

var (
	ErrStorageDisabled = errors.New("file storage is not configured")
	ErrTeacherOnly     = errors.New("only teachers can do this")
)

var notFound = []error{
	repository.ErrGoalNotFound,
	repository.ErrUserNotFound,
	repository.ErrGroupNotFound,
	repository.ErrProjectNotFound,
	repository.ErrResourceNotFound,
	repository.ErrFileNotFound,
	repository.ErrMemberNotFound,
}

// storeError classifies a repository failure as not found or store
// unavailable, keeping the original error in the chain.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", lifecycle.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %w", lifecycle.ErrStoreUnavailable, err)
}
