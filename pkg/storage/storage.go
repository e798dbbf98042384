package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// UploadedFile describes a stored file as reported back to the caller.
// Size and mime type are best-effort; they are only as accurate as what
// the upload pipeline supplied.
type UploadedFile struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// FileStorage defines the contract for file storage providers.
type FileStorage interface {
	// Upload stores the file content and returns its descriptor.
	// folder is a logical folder in storage (e.g. "submissions").
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadedFile, error)
	// Delete removes a stored file using its URL.
	Delete(ctx context.Context, fileURL string) error
}

var allowedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".zip": {},
	".txt": {}, ".mp4": {}, ".webm": {},
}

// ValidateFile rejects files whose extension is not on the allow-list.
func ValidateFile(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("invalid file type %q; allowed types: jpeg, jpg, png, gif, pdf, doc, docx, zip, txt, mp4, webm", ext)
	}
	return nil
}
