package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/Mrabbi3/ConceptsPro/pkg/storage"
)

const maxFilesPerUpload = 10

type FileService interface {
	Upload(ctx context.Context, folder string, header *multipart.FileHeader) (*storage.UploadedFile, error)
	UploadMultiple(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]storage.UploadedFile, error)
	// CleanupOrphanUploads removes stored files older than the retention
	// window that no submission references.
	CleanupOrphanUploads(ctx context.Context, folder string, olderThan time.Duration) error
}

type fileService struct {
	store       storage.FileStorage
	local       *storage.LocalStorage
	submissions repository.SubmissionRepository
	maxSize     int64
}

// NewFileService wires the active storage driver. local may be nil when
// running on a remote driver; orphan cleanup is then a no-op.
func NewFileService(store storage.FileStorage, local *storage.LocalStorage, submissions repository.SubmissionRepository, maxSize int64) FileService {
	return &fileService{
		store:       store,
		local:       local,
		submissions: submissions,
		maxSize:     maxSize,
	}
}

func (s *fileService) Upload(ctx context.Context, folder string, header *multipart.FileHeader) (*storage.UploadedFile, error) {
	if header.Size > s.maxSize {
		return nil, apperror.Wrap(apperror.ErrInvalidInput,
			fmt.Sprintf("file %q exceeds the maximum size of %d bytes", header.Filename, s.maxSize))
	}

	if err := storage.ValidateFile(header.Filename); err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, err.Error())
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	uploaded, err := s.store.Upload(ctx, src, folder, header.Filename)
	if err != nil {
		return nil, err
	}

	if uploaded.MimeType == "" {
		uploaded.MimeType = header.Header.Get("Content-Type")
	}

	return uploaded, nil
}

func (s *fileService) UploadMultiple(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]storage.UploadedFile, error) {
	if len(headers) == 0 {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "no files provided")
	}
	if len(headers) > maxFilesPerUpload {
		return nil, apperror.Wrap(apperror.ErrInvalidInput,
			fmt.Sprintf("too many files; at most %d per request", maxFilesPerUpload))
	}

	// Validate everything up front so a bad file does not leave a
	// partial batch behind.
	for _, header := range headers {
		if header.Size > s.maxSize {
			return nil, apperror.Wrap(apperror.ErrInvalidInput,
				fmt.Sprintf("file %q exceeds the maximum size of %d bytes", header.Filename, s.maxSize))
		}
		if err := storage.ValidateFile(header.Filename); err != nil {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, err.Error())
		}
	}

	uploaded := make([]storage.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := s.Upload(ctx, folder, header)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, *file)
	}

	return uploaded, nil
}

func (s *fileService) CleanupOrphanUploads(ctx context.Context, folder string, olderThan time.Duration) error {
	if s.local == nil {
		return nil
	}

	cutoff := time.Now().Add(-olderThan).Unix()
	urls, err := s.local.ListOlderThan(folder, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list uploads in %s: %w", folder, err)
	}

	removed := 0
	for _, url := range urls {
		referenced, err := s.submissions.FileExistsByURL(ctx, url)
		if err != nil {
			log.Printf("orphan check failed for %s: %v", url, err)
			continue
		}
		if referenced {
			continue
		}

		if err := s.store.Delete(ctx, url); err != nil {
			log.Printf("failed to delete orphan %s: %v", url, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("orphan cleanup removed %d files from %s", removed, folder)
	}

	return nil
}
