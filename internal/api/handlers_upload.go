// handlers_upload.go - Archive upload handlers
package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adventure-scaler/scaler/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store        storage.Store
	allowedTypes []string
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store, allowedTypes []string) UploadHandler {
	return &UploadHandlerImpl{
		store:        store,
		allowedTypes: allowedTypes,
	}
}

// HandleUploadFile accepts a multipart archive and stores it for later
// scaling jobs
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}
	if !allowedType(h.allowedTypes, file.Filename) {
		return NewBadRequestError(fmt.Sprintf("file type not allowed: %s", file.Filename), nil)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// allowedType reports whether name has one of the extensions in types.
// An empty list allows everything.
func allowedType(types []string, name string) bool {
	if len(types) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, t := range types {
		if ext == t {
			return true
		}
	}
	return false
}

// ParseFileTypes splits a comma separated extension list such as ".zip,.fvttadv".
func ParseFileTypes(list string) []string {
	var out []string
	for _, t := range strings.Split(list, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		out = append(out, t)
	}
	return out
}
