// handlers_files_test.go - Tests for stored archive handlers
package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/testutil"
)

func fileContext(e *echo.Echo, method, target, id string, body []byte) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, code, apiErr.Code)
}

func TestFileHandler_HandleGetRecentFiles(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("a", "a.zip", []byte("a"))
	store.AddFile("b", "b.zip", []byte("b"))
	_, err := store.Produce("a-x2.zip", models.FileOrigin{SourceID: "a", Scale: "2"}, func(path string) error {
		return testWriteFile(path, []byte("out"))
	})
	require.NoError(t, err)

	h := NewFileHandler(store, nil, true)
	e := echo.New()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"all", "/api/files/recent", 3},
		{"limited", "/api/files/recent?limit=2", 2},
		{"uploads only", "/api/files/recent?kind=upload", 2},
		{"outputs only", "/api/files/recent?kind=output", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := fileContext(e, http.MethodGet, tt.target, "", nil)
			require.NoError(t, h.HandleGetRecentFiles(c))

			var files []models.FileInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
			assert.Len(t, files, tt.want)
		})
	}

	t.Run("invalid limit", func(t *testing.T) {
		c, _ := fileContext(e, http.MethodGet, "/api/files/recent?limit=zero", "", nil)
		requireAPIError(t, h.HandleGetRecentFiles(c), http.StatusBadRequest, "VALIDATION_ERROR")
	})
}

func TestFileHandler_HandleGetFile(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("file-1", "cave.zip", []byte("content"))
	h := NewFileHandler(store, nil, true)
	e := echo.New()

	c, rec := fileContext(e, http.MethodGet, "/api/files/file-1", "file-1", nil)
	require.NoError(t, h.HandleGetFile(c))
	assert.Contains(t, rec.Body.String(), `"name":"cave.zip"`)

	c, _ = fileContext(e, http.MethodGet, "/api/files/missing", "missing", nil)
	requireAPIError(t, h.HandleGetFile(c), http.StatusNotFound, "NOT_FOUND")

	c, _ = fileContext(e, http.MethodGet, "/api/files/", "", nil)
	requireAPIError(t, h.HandleGetFile(c), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestFileHandler_HandleDownloadFile(t *testing.T) {
	store := testutil.NewMockStorage(t)
	archive := caveArchive(t)
	store.AddFile("file-1", "cave.zip", archive)
	h := NewFileHandler(store, nil, true)
	e := echo.New()

	c, rec := fileContext(e, http.MethodGet, "/api/files/file-1/download", "file-1", nil)
	require.NoError(t, h.HandleDownloadFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `cave.zip`)
	assert.Equal(t, archive, rec.Body.Bytes())

	c, _ = fileContext(e, http.MethodGet, "/api/files/missing/download", "missing", nil)
	requireAPIError(t, h.HandleDownloadFile(c), http.StatusNotFound, "NOT_FOUND")
}

func TestFileHandler_HandleGetFileScenes(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("file-1", "cave.zip", caveArchive(t))
	store.AddFile("broken", "broken.zip", []byte("not a zip"))
	summaries := newTestCache(t)
	h := NewFileHandler(store, summaries, true)
	e := echo.New()

	c, rec := fileContext(e, http.MethodGet, "/api/files/file-1/scenes", "file-1", nil)
	require.NoError(t, h.HandleGetFileScenes(c))

	var resp inspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Scenes, 1)
	assert.Equal(t, "s1", resp.Scenes[0].ID)

	cached, ok := summaries.Get("file-1")
	require.True(t, ok)
	assert.Equal(t, resp.Scenes, cached)

	t.Run("served from cache", func(t *testing.T) {
		summaries.Set("file-1", []models.SceneSummary{{Entry: "scene/cached.json", ID: "cached"}})
		c, rec := fileContext(e, http.MethodGet, "/api/files/file-1/scenes", "file-1", nil)
		require.NoError(t, h.HandleGetFileScenes(c))
		assert.Contains(t, rec.Body.String(), `"id":"cached"`)
	})

	t.Run("broken archive", func(t *testing.T) {
		c, _ := fileContext(e, http.MethodGet, "/api/files/broken/scenes", "broken", nil)
		requireAPIError(t, h.HandleGetFileScenes(c), http.StatusBadRequest, "ARCHIVE_FORMAT")
	})
}

func TestFileHandler_HandleDeleteFile(t *testing.T) {
	e := echo.New()

	t.Run("deletes and evicts", func(t *testing.T) {
		store := testutil.NewMockStorage(t)
		store.AddFile("file-1", "cave.zip", []byte("x"))
		summaries := newTestCache(t)
		summaries.Set("file-1", nil)
		h := NewFileHandler(store, summaries, true)

		c, rec := fileContext(e, http.MethodDelete, "/api/files/file-1", "file-1", nil)
		require.NoError(t, h.HandleDeleteFile(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, store.GetFileCount())
		_, ok := summaries.Get("file-1")
		assert.False(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		h := NewFileHandler(testutil.NewMockStorage(t), nil, true)
		c, _ := fileContext(e, http.MethodDelete, "/api/files/missing", "missing", nil)
		requireAPIError(t, h.HandleDeleteFile(c), http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("disabled", func(t *testing.T) {
		store := testutil.NewMockStorage(t)
		store.AddFile("file-1", "cave.zip", []byte("x"))
		h := NewFileHandler(store, nil, false)
		c, _ := fileContext(e, http.MethodDelete, "/api/files/file-1", "file-1", nil)
		requireAPIError(t, h.HandleDeleteFile(c), http.StatusForbidden, "FORBIDDEN")
		assert.Equal(t, 1, store.GetFileCount())
	})
}

func TestFileHandler_HandleRenameFile(t *testing.T) {
	store := testutil.NewMockStorage(t)
	store.AddFile("file-1", "cave.zip", []byte("x"))
	h := NewFileHandler(store, nil, true)
	e := echo.New()

	c, rec := fileContext(e, http.MethodPut, "/api/files/file-1", "file-1", []byte(`{"name":"grotto.zip"}`))
	require.NoError(t, h.HandleRenameFile(c))
	assert.True(t, strings.Contains(rec.Body.String(), `"name":"grotto.zip"`))

	c, _ = fileContext(e, http.MethodPut, "/api/files/file-1", "file-1", []byte(`{"name":""}`))
	requireAPIError(t, h.HandleRenameFile(c), http.StatusBadRequest, "VALIDATION_ERROR")

	c, _ = fileContext(e, http.MethodPut, "/api/files/missing", "missing", []byte(`{"name":"x.zip"}`))
	requireAPIError(t, h.HandleRenameFile(c), http.StatusNotFound, "NOT_FOUND")
}
