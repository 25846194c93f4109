package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adventure-scaler/scaler/internal/adventure"
	"github.com/adventure-scaler/scaler/internal/api"
	"github.com/adventure-scaler/scaler/internal/cache"
	"github.com/adventure-scaler/scaler/internal/config"
	"github.com/adventure-scaler/scaler/internal/jobs"
	"github.com/adventure-scaler/scaler/internal/models"
	"github.com/adventure-scaler/scaler/internal/storage"
	"github.com/adventure-scaler/scaler/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "AdventureScaler.config.xml"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		config.Exitf("Failed to load .env: %v", err)
	}

	// Default to a config file next to the executable
	exePath, err := os.Executable()
	if err != nil {
		config.Exitf("Failed to get executable path: %v", err)
	}
	configPath := flag.String("config", filepath.Join(filepath.Dir(exePath), configFileName), "path to the XML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		config.Exitf("Failed to load configuration: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		config.Exitf("Failed to create directories: %v", err)
	}

	// Multipart uploads spill to disk under os.TempDir
	if err := os.Setenv("TMPDIR", cfg.Storage.TempDirectory); err != nil {
		config.Exitf("Failed to set temp directory: %v", err)
	}

	log, err := cfg.Logger()
	if err != nil {
		config.Exitf("Failed to configure logging: %v", err)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir(), cfg.GetOutputDir())
	if err != nil {
		config.Exitf("Failed to initialize storage: %v", err)
	}

	summaries, err := cache.NewSummaryCache(cfg.Advanced.SummaryCacheEntries)
	if err != nil {
		config.Exitf("Failed to initialize summary cache: %v", err)
	}
	defer summaries.Close()

	jobManager := jobs.NewManager(fileStore, log, func(info *models.FileInfo, scenes []models.SceneSummary) {
		summaries.Set(info.ID, scenes)
	})
	defer jobManager.Shutdown()

	handlers := api.NewHandlers(&api.Dependencies{
		Store:     fileStore,
		Summaries: summaries,
		Jobs:      jobManager,
		Defaults: api.ScaleDefaults{
			FixNavigation:    cfg.Scaling.FixNavigation,
			ScaleDrawingSize: cfg.Scaling.ScaleDrawingSize,
			AllowedFileTypes: api.ParseFileTypes(cfg.Security.AllowedFileTypes),
		},
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
		Log:               log,
		Version:           Version,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
	}, log)
	api.RegisterRoutes(e, handlers)

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.WithError(err).Warn("failed to register static routes")
			embeddedMode = false
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Adventure Scaler Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Scale:      %-45s║\n", adventure.MinRatio.String()+" to "+adventure.MaxRatio.String())
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Drop finished jobs in the background
	if interval := time.Duration(cfg.Scaling.CleanupIntervalMinutes) * time.Minute; interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := jobManager.CleanupOldJobs(time.Duration(cfg.Scaling.JobRetentionMinutes) * time.Minute); n > 0 {
						log.WithField("removed", n).Debug("cleaned up finished jobs")
					}
				}
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server stopped")
		stop()
		jobManager.Shutdown()
		summaries.Close()
		os.Exit(1)
	}
}
