package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFileType is returned for uploads that are not .pdf or .docx.
var ErrUnsupportedFileType = errors.New("unsupported resume file type")

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// SupportedResumeExtension reports whether name has an extension the
// document parser can read.
func SupportedResumeExtension(name string) bool {
	return resumeExtensions[strings.ToLower(filepath.Ext(name))]
}

// StoredUpload is a resume upload staged on disk.
type StoredUpload struct {
	Name string
	Path string
}

// StorageService stages uploaded resumes on disk until their text is
// extracted.
type StorageService interface {
	StageResume(file *multipart.FileHeader) (*StoredUpload, error)
	Discard(upload *StoredUpload) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// StageResume copies the upload under a unique name. A partially written
// file is removed when the copy fails.
func (s *storageService) StageResume(file *multipart.FileHeader) (*StoredUpload, error) {
	if !SupportedResumeExtension(file.Filename) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(file.Filename))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	upload := &StoredUpload{Name: "resume_" + uuid.NewString() + ext}
	upload.Path = filepath.Join(s.uploadPath, upload.Name)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(upload.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(upload.Path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return upload, nil
}

// Discard removes a staged upload. Removing one that is already gone is not
// an error.
func (s *storageService) Discard(upload *StoredUpload) error {
	if upload == nil {
		return nil
	}
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard upload %s: %w", upload.Name, err)
	}
	return nil
}
