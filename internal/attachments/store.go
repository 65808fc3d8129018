// Package attachments stores expense attachment files under a documents
// directory, keyed by file name, and declares the capture/geocoding
// collaborators the view-models consume.
package attachments

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is the file-system capability attachments need: write, delete, and
// the deterministic path derived from a file name.
type Store interface {
	Save(fileName string, data []byte) error
	Delete(fileName string) error
	Path(fileName string) string
}

// Geocoder maps a coordinate to a human-readable display name. The concrete
// implementation is an external collaborator.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// Picked is what an image-capture or file-picker collaborator returns.
type Picked struct {
	Data        []byte
	FileName    string
	ContentType string
}

// DirStore keeps attachment files in a single directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Save(fileName string, data []byte) error {
	if err := os.WriteFile(s.Path(fileName), data, 0o644); err != nil {
		return fmt.Errorf("write attachment %s: %w", fileName, err)
	}
	return nil
}

func (s *DirStore) Delete(fileName string) error {
	if err := os.Remove(s.Path(fileName)); err != nil {
		return fmt.Errorf("delete attachment %s: %w", fileName, err)
	}
	return nil
}

func (s *DirStore) Path(fileName string) string {
	// The name is generated on our side; Base guards against traversal anyway.
	return filepath.Join(s.dir, filepath.Base(fileName))
}

// GeneratedFileName produces a unique file name with an extension matching
// the content type.
func GeneratedFileName(contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "application/pdf":
		ext = ".pdf"
	}
	return uuid.NewString() + ext
}
