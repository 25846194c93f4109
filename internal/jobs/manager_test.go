package jobs

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adventure-scaler/scaler/internal/adventure"
	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/storage"
	"github.com/adventure-scaler/scaler/internal/testutil"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStartJobScalesStoredArchive(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("up-1", "cave.fvttadv", testutil.BuildArchive(t,
		testutil.Entry{Name: "adventure.json", Data: []byte(`{}`)},
		testutil.Entry{Name: "scene/s1.json", Data: testutil.PopulatedScene("s1").JSON(t)},
	))

	var (
		mu        sync.Mutex
		completed []string
	)
	m := NewManager(store, quietLogger(), func(info *models.FileInfo, scenes []models.SceneSummary) {
		mu.Lock()
		defer mu.Unlock()
		completed = append(completed, info.ID)
	})

	job, err := m.StartJob(Request{SourceID: "up-1", Ratio: decimal.NewFromInt(2), Options: adventure.DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, "cave-x2.fvttadv", job.FileName)
	assert.Equal(t, "2", job.Scale)

	m.Wait()

	got, ok := m.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	require.NotNil(t, got.FileInfo)
	assert.Equal(t, models.FileKindOutput, got.FileInfo.Kind)
	assert.Equal(t, "up-1", got.FileInfo.SourceID)
	require.Len(t, got.Scenes, 1)
	assert.Equal(t, int64(2000), got.Scenes[0].Width)
	assert.NotNil(t, got.CompletedAt)

	mu.Lock()
	assert.Equal(t, []string{got.FileInfo.ID}, completed)
	mu.Unlock()

	data, err := store.GetFileData(got.FileInfo.ID)
	require.NoError(t, err)
	_, ok = testutil.Lookup(testutil.ReadArchive(t, data), "scene/s1.json")
	assert.True(t, ok)
}

func TestStartJobRejections(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("up-1", "cave.zip", []byte("x"))
	out, err := store.Produce("out.zip", models.FileOrigin{SourceID: "up-1", Scale: "2"}, func(path string) error {
		return os.WriteFile(path, []byte("y"), 0644)
	})
	require.NoError(t, err)

	m := NewManager(store, quietLogger(), nil)

	t.Run("ratio out of range", func(t *testing.T) {
		_, err := m.StartJob(Request{SourceID: "up-1", Ratio: decimal.NewFromInt(11)})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidScale))
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := m.StartJob(Request{SourceID: "nope", Ratio: decimal.NewFromInt(2)})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("source is an output", func(t *testing.T) {
		_, err := m.StartJob(Request{SourceID: out.ID, Ratio: decimal.NewFromInt(2)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an uploaded archive")
	})
}

func TestJobFailureRecordsCode(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("up-1", "cave.zip", []byte("not a zip"))

	m := NewManager(store, quietLogger(), func(*models.FileInfo, []models.SceneSummary) {
		t.Error("completion callback called for a failed job")
	})
	job, err := m.StartJob(Request{SourceID: "up-1", Ratio: decimal.NewFromInt(2), Options: adventure.DefaultOptions()})
	require.NoError(t, err)
	m.Wait()

	got, ok := m.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, string(apperrors.CodeArchiveFormat), got.ErrorCode)
	assert.Nil(t, got.FileInfo)
	assert.Equal(t, 1, store.GetFileCount())

	data, err := store.GetFileData("up-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("not a zip"), data)
}

func TestCleanupOldJobs(t *testing.T) {
	m := NewManager(testutil.NewMockStorage(t), quietLogger(), nil)

	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now()
	m.jobs["done-old"] = &Job{ID: "done-old", Status: StatusComplete, CompletedAt: &old}
	m.jobs["failed-old"] = &Job{ID: "failed-old", Status: StatusError, CompletedAt: &old}
	m.jobs["done-new"] = &Job{ID: "done-new", Status: StatusComplete, CompletedAt: &recent}
	m.jobs["running"] = &Job{ID: "running", Status: StatusScaling}

	assert.Equal(t, 2, m.CleanupOldJobs(time.Hour))

	_, ok := m.GetJob("done-old")
	assert.False(t, ok)
	_, ok = m.GetJob("done-new")
	assert.True(t, ok)
	_, ok = m.GetJob("running")
	assert.True(t, ok)
}

func TestShutdownCancelsPendingWork(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("up-1", "cave.zip", testutil.BuildArchive(t,
		testutil.Entry{Name: "scene/s1.json", Data: testutil.PopulatedScene("s1").JSON(t)},
	))

	m := NewManager(store, quietLogger(), nil)
	m.Shutdown()

	job, err := m.StartJob(Request{SourceID: "up-1", Ratio: decimal.NewFromInt(2), Options: adventure.DefaultOptions()})
	require.NoError(t, err)
	m.Wait()

	got, _ := m.GetJob(job.ID)
	assert.Equal(t, StatusError, got.Status)
	assert.Contains(t, got.Error, "context canceled")
}
