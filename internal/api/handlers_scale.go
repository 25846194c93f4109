// handlers_scale.go - Adventure scaling and inspection handlers
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adventure-scaler/scaler/internal/adventure"
	"github.com/adventure-scaler/scaler/internal/cache"
	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/storage"
)

// ScaleDefaults are applied when a request leaves an option out.
type ScaleDefaults struct {
	FixNavigation    bool
	ScaleDrawingSize bool
	AllowedFileTypes []string
}

// ScaleHandlerImpl implements the ScaleHandler interface
type ScaleHandlerImpl struct {
	store    storage.Store
	cache    *cache.SummaryCache
	defaults ScaleDefaults
	log      logrus.FieldLogger
}

// NewScaleHandler creates a new scale handler instance
func NewScaleHandler(store storage.Store, summaries *cache.SummaryCache, defaults ScaleDefaults, log logrus.FieldLogger) ScaleHandler {
	return &ScaleHandlerImpl{
		store:    store,
		cache:    summaries,
		defaults: defaults,
		log:      log,
	}
}

// HandleScale stores the uploaded archive, scales it and returns the
// produced file's metadata.
func (h *ScaleHandlerImpl) HandleScale(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}
	if !allowedType(h.defaults.AllowedFileTypes, file.Filename) {
		return NewBadRequestError(fmt.Sprintf("file type not allowed: %s", file.Filename), nil)
	}

	scale := c.FormValue("scale")
	if scale == "" {
		return NewValidationError("scale")
	}
	ratio, err := adventure.ParseRatio(scale)
	if err != nil {
		return FromDomainError(err)
	}

	opts, err := h.options(c)
	if err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	upload, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}
	inputPath, err := h.store.GetFilePath(upload.ID)
	if err != nil {
		return NewInternalError("failed to locate upload", err)
	}

	log := h.log.WithField("upload", upload.ID)
	scaler := adventure.NewScaler(opts, log)

	var result *adventure.Result
	origin := models.FileOrigin{SourceID: upload.ID, Scale: ratio.String()}
	info, err := h.store.Produce(adventure.ScaledName(file.Filename, ratio), origin, func(path string) error {
		var err error
		result, err = scaler.PerformScaling(c.Request().Context(), inputPath, path, ratio)
		return err
	})
	if err != nil {
		return FromDomainError(err)
	}

	if h.cache != nil {
		h.cache.Set(info.ID, result.Scenes)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleInspect lists the scenes of the uploaded archive without storing it
func (h *ScaleHandlerImpl) HandleInspect(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	scenes, err := adventure.Inspect(c.Request().Context(), src, file.Size)
	if err != nil {
		return FromDomainError(err)
	}

	return respondScenes(c, file.Filename, scenes)
}

type inspectResponse struct {
	Name   string                `json:"name" msgpack:"name"`
	Scenes []models.SceneSummary `json:"scenes" msgpack:"scenes"`
}

// respondScenes writes JSON, or MessagePack when ?format=msgpack.
func respondScenes(c echo.Context, name string, scenes []models.SceneSummary) error {
	resp := inspectResponse{Name: name, Scenes: scenes}
	if c.QueryParam("format") != "msgpack" {
		return c.JSON(http.StatusOK, resp)
	}

	data, err := msgpack.Marshal(resp)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *ScaleHandlerImpl) options(c echo.Context) (adventure.Options, error) {
	fixNav, err := formBool(c, "fixNavigation", h.defaults.FixNavigation)
	if err != nil {
		return adventure.Options{}, err
	}
	drawingSize, err := formBool(c, "scaleDrawingSize", h.defaults.ScaleDrawingSize)
	if err != nil {
		return adventure.Options{}, err
	}
	return h.defaults.options(fixNav, drawingSize), nil
}

// options builds scaler options from explicit choices.
func (d ScaleDefaults) options(fixNavigation, scaleDrawingSize bool) adventure.Options {
	opts := adventure.DefaultOptions()
	opts.Encode.NavigationFromDescription = !fixNavigation
	opts.Scale.ScaleDrawingSize = scaleDrawingSize
	return opts
}

func formBool(c echo.Context, name string, fallback bool) (bool, error) {
	v := c.FormValue(name)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, NewValidationError(name)
	}
	return b, nil
}
