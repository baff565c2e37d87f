package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/storage"
)

// FileService stores uploads in object storage and records them in the
// files table. A nil storage disables uploads.
type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// Upload saves the file under <ownerType>/<ownerID>/. Validation of type and
// size is the caller's job.
func (s *FileService) Upload(ctx context.Context, userID, ownerType, ownerID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext
	storagePath := path.Join(ownerType, ownerID, filename)
	mimeType := header.Header.Get("Content-Type")

	if err := s.storage.Save(ctx, storagePath, file, mimeType); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	record := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		OwnerType:    ownerType,
		OwnerID:      ownerID,
		Type:         model.FileTypeResource,
		Filename:     filename,
		OriginalName: filepath.Base(header.Filename),
		MimeType:     mimeType,
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	if err := s.fileRepo.Create(ctx, record); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", storeError(err))
	}

	return record, nil
}

// URL returns a presigned download link, or "" when it cannot be built.
func (s *FileService) URL(ctx context.Context, fileID string) string {
	if s.storage == nil {
		return ""
	}

	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		slog.Warn("file record missing", "error", err, "file_id", fileID)
		return ""
	}

	url, err := s.storage.URL(ctx, file.StoragePath)
	if err != nil {
		slog.Error("failed to presign file URL", "error", err, "file_id", fileID)
		return ""
	}
	return url
}

// Delete removes the stored object (best effort) and the record.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", storeError(err))
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
			slog.Error("failed to delete file from storage", "error", err, "path", file.StoragePath)
		}
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", storeError(err))
	}
	return nil
}
