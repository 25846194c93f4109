// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/storage"
)

// MockStorage implements storage.Store for testing. Contents are written
// under a per-test temp directory so handlers can open them by path.
type MockStorage struct {
	mu      sync.RWMutex
	tempDir string
	files   map[string]*models.FileInfo

	// FailProduce, when set, is returned by Produce before write runs.
	FailProduce error
}

// NewMockStorage creates a new mock storage rooted in t.TempDir().
func NewMockStorage(t testing.TB) *MockStorage {
	return &MockStorage{
		tempDir: t.TempDir(),
		files:   make(map[string]*models.FileInfo),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.AddFile(generateTestID(), name, data), nil
}

func (m *MockStorage) Produce(name string, origin models.FileOrigin, write func(path string) error) (*models.FileInfo, error) {
	if m.FailProduce != nil {
		return nil, m.FailProduce
	}

	id := generateTestID()
	path := filepath.Join(m.tempDir, id)
	if err := write(path); err != nil {
		os.Remove(path)
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       stat.Size(),
		UploadedAt: time.Now(),
		Kind:       models.FileKindOutput,
		Status:     "scaled",
		SourceID:   origin.SourceID,
		Scale:      origin.Scale,
	}
	m.files[id] = file
	return file, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return file, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.files))
	for _, file := range m.files {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return storage.ErrNotFound
	}

	os.Remove(filepath.Join(m.tempDir, id))
	delete(m.files, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	file.Name = newName
	return file, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", storage.ErrNotFound
	}
	return filepath.Join(m.tempDir, id), nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile writes data to disk and registers it as an upload.
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(filepath.Join(m.tempDir, id), data, 0644); err != nil {
		panic(fmt.Sprintf("failed to write test file: %v", err))
	}

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Kind:       models.FileKindUpload,
		Status:     "uploaded",
	}
	m.files[id] = file
	return file
}

// GetFileData returns the file content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return nil, errors.New("file not found")
	}
	return os.ReadFile(filepath.Join(m.tempDir, id))
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
