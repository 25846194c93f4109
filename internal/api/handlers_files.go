// handlers_files.go - Stored archive handlers
package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adventure-scaler/scaler/internal/adventure"
	"github.com/adventure-scaler/scaler/internal/cache"
	"github.com/adventure-scaler/scaler/internal/storage"
)

const recentFilesLimit = 20

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store       storage.Store
	cache       *cache.SummaryCache
	allowDelete bool
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store storage.Store, summaries *cache.SummaryCache, allowDelete bool) FileHandler {
	return &FileHandlerImpl{
		store:       store,
		cache:       summaries,
		allowDelete: allowDelete,
	}
}

// HandleGetRecentFiles returns the most recently stored archives
func (h *FileHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	limit := recentFilesLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return NewValidationError("limit")
		}
		limit = n
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	kind := c.QueryParam("kind")
	if kind == "" {
		return c.JSON(http.StatusOK, files)
	}
	filtered := files[:0:0]
	for _, f := range files {
		if f.Kind == kind {
			filtered = append(filtered, f)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}

// HandleGetFile returns metadata for a specific file
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDownloadFile sends the archive as an attachment
func (h *FileHandlerImpl) HandleDownloadFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	path, err := h.store.GetFilePath(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.Attachment(path, info.Name)
}

// HandleGetFileScenes lists the scenes of a stored archive
func (h *FileHandlerImpl) HandleGetFileScenes(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	if h.cache != nil {
		if scenes, ok := h.cache.Get(id); ok {
			return respondScenes(c, info.Name, scenes)
		}
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	f, err := os.Open(path)
	if err != nil {
		return NewInternalError("failed to open file", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return NewInternalError("failed to stat file", err)
	}

	scenes, err := adventure.Inspect(c.Request().Context(), f, stat.Size())
	if err != nil {
		return FromDomainError(err)
	}
	if h.cache != nil {
		h.cache.Set(id, scenes)
	}

	return respondScenes(c, info.Name, scenes)
}

// HandleDeleteFile deletes a stored archive
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	if !h.allowDelete {
		return NewForbiddenError("file deletion is disabled")
	}

	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", id)
		}
		return NewInternalError("failed to delete file", err)
	}

	if h.cache != nil {
		h.cache.Delete(id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the name of a file
func (h *FileHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

type renameFileRequest struct {
	Name string `json:"name"`
}
