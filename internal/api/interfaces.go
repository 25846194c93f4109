// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ScaleHandler rescales and inspects uploaded adventure archives
type ScaleHandler interface {
	HandleScale(c echo.Context) error
	HandleInspect(c echo.Context) error
}

// UploadHandler stores archives for later scaling
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
}

// JobHandler runs scaling of stored archives in the background
type JobHandler interface {
	HandleStartJob(c echo.Context) error
	HandleGetJob(c echo.Context) error
	HandleJobStream(c echo.Context) error
}

// FileHandler manages stored archives
type FileHandler interface {
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDownloadFile(c echo.Context) error
	HandleGetFileScenes(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}
