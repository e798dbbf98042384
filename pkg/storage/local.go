package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores uploads on the local filesystem under a base
// directory, one subdirectory per logical folder. Files are served back
// by folder and filename.
type LocalStorage struct {
	baseDir string
	baseURL string
}

func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadedFile, error) {
	if err := ValidateFile(fileName); err != nil {
		return nil, err
	}

	if folder == "" {
		folder = "general"
	}
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", folder, err)
	}

	storedName := fmt.Sprintf("%s-%s", uuid.New().String(), filepath.Base(fileName))
	fullPath := filepath.Join(dir, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &UploadedFile{
		FileName: filepath.Base(fileName),
		FileURL:  fmt.Sprintf("%s/%s/%s", s.baseURL, folder, storedName),
		FileSize: size,
		MimeType: mimeType,
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	trimmed := strings.TrimPrefix(fileURL, s.baseURL+"/")
	folder, name, ok := strings.Cut(trimmed, "/")
	if !ok {
		return fmt.Errorf("could not resolve file path from URL: %s", fileURL)
	}

	path, err := s.Resolve(folder, name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve maps a folder/filename pair to an absolute path inside the
// upload root. Path traversal outside the root is rejected.
func (s *LocalStorage) Resolve(folder, fileName string) (string, error) {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(base, folder, fileName)
	if !strings.HasPrefix(path, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path")
	}
	return path, nil
}

// ListOlderThan returns URLs of files in the given folder modified
// before the cutoff. Used by the orphan cleanup job.
func (s *LocalStorage) ListOlderThan(folder string, cutoffUnix int64) ([]string, error) {
	dir := filepath.Join(s.baseDir, folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var urls []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Unix() < cutoffUnix {
			urls = append(urls, fmt.Sprintf("%s/%s/%s", s.baseURL, folder, entry.Name()))
		}
	}
	return urls, nil
}
