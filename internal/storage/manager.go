package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adventure-scaler/scaler/internal/models"
)

// ErrNotFound is returned for unknown file IDs.
var ErrNotFound = errors.New("file not found")

// Store defines the interface for archive storage.
type Store interface {
	Save(name string, r io.Reader) (*models.FileInfo, error)
	Produce(name string, origin models.FileOrigin, write func(path string) error) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
}

// LocalStore implements Store using the local filesystem. Uploads and
// produced archives live in separate directories under their IDs.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	outputDir string
	files     map[string]*models.FileInfo
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir, outputDir string) (*LocalStore, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	return &LocalStore{
		uploadDir: uploadDir,
		outputDir: outputDir,
		files:     make(map[string]*models.FileInfo),
	}, nil
}

// Save stores an uploaded archive.
func (s *LocalStore) Save(name string, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
		Kind:       models.FileKindUpload,
		Status:     "uploaded",
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return cloneInfo(info), nil
}

// Produce allocates a path for a new archive, lets write fill it and
// registers the result. Nothing is registered if write fails, and whatever
// write left at path is removed: the uploaded source stays in the store as
// the unscaled copy.
func (s *LocalStore) Produce(name string, origin models.FileOrigin, write func(path string) error) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.outputDir, id)

	if err := write(path); err != nil {
		os.Remove(path)
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat produced file: %w", err)
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       stat.Size(),
		UploadedAt: time.Now(),
		Kind:       models.FileKindOutput,
		Status:     "scaled",
		SourceID:   origin.SourceID,
		Scale:      origin.Scale,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return cloneInfo(info), nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return cloneInfo(info), nil
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, cloneInfo(info))
	}

	// Sort by UploadedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(s.pathFor(info)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// Rename updates the display name of a file.
func (s *LocalStore) Rename(id string, newName string) (*models.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	info.Name = newName
	return cloneInfo(info), nil
}

// GetFilePath returns the absolute path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.pathFor(info), nil
}

// cloneInfo detaches metadata handed to callers from the index.
func cloneInfo(info *models.FileInfo) *models.FileInfo {
	c := *info
	return &c
}

func (s *LocalStore) pathFor(info *models.FileInfo) string {
	if info.Kind == models.FileKindOutput {
		return filepath.Join(s.outputDir, info.ID)
	}
	return filepath.Join(s.uploadDir, info.ID)
}
