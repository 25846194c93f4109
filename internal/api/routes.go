// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/adventure-scaler/scaler/internal/cache"
	"github.com/adventure-scaler/scaler/internal/jobs"
	"github.com/adventure-scaler/scaler/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Summaries         *cache.SummaryCache
	Jobs              *jobs.Manager
	Defaults          ScaleDefaults
	AllowFileDeletion bool
	Log               logrus.FieldLogger
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Scale  ScaleHandler
	Upload UploadHandler
	Jobs   JobHandler
	Files  FileHandler
	WS     *WebSocketHandler

	allowDelete bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Version),
		Scale:       NewScaleHandler(deps.Store, deps.Summaries, deps.Defaults, deps.Log),
		Upload:      NewUploadHandler(deps.Store, deps.Defaults.AllowedFileTypes),
		Jobs:        NewJobHandler(deps.Jobs, deps.Defaults),
		Files:       NewFileHandler(deps.Store, deps.Summaries, deps.AllowFileDeletion),
		WS:          NewWebSocketHandler(deps.Jobs, deps.Log),
		allowDelete: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Scaling
	apiGroup.POST("/scale", handlers.Scale.HandleScale)
	apiGroup.POST("/inspect", handlers.Scale.HandleInspect)

	// Background jobs over stored uploads
	apiGroup.POST("/jobs", handlers.Jobs.HandleStartJob)
	apiGroup.GET("/jobs/:id", handlers.Jobs.HandleGetJob)
	apiGroup.GET("/jobs/:id/stream", handlers.Jobs.HandleJobStream)
	apiGroup.GET("/ws/jobs", handlers.WS.HandleWebSocket)

	// Stored archives
	filesGroup := apiGroup.Group("/files")
	filesGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	filesGroup.GET("/recent", handlers.Files.HandleGetRecentFiles)
	filesGroup.GET("/:id", handlers.Files.HandleGetFile)
	filesGroup.GET("/:id/download", handlers.Files.HandleDownloadFile)
	filesGroup.GET("/:id/scenes", handlers.Files.HandleGetFileScenes)
	filesGroup.PUT("/:id", handlers.Files.HandleRenameFile)

	// Conditional delete based on config
	if handlers.allowDelete {
		filesGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)
	}
}

// MiddlewareConfig selects the optional middleware.
type MiddlewareConfig struct {
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   string
	BodyLimit      string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig, log logrus.FieldLogger) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.RequestLogging || c.Request().URL.Path == "/api/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := strings.Split(cfg.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
