// Package config provides XML-based configuration for the adventure scaler.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override name.
const EnvPrefix = "SCALER_"

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"AdventureScaler"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Scaling defaults
	Scaling ScalingConfig `xml:"Scaling"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port" env:"PORT"`
	BindAddress  string `xml:"BindAddress" env:"BIND_ADDRESS"`
	EnableCORS   bool   `xml:"EnableCORS" env:"ENABLE_CORS"`
	AllowOrigins string `xml:"AllowOrigins" env:"ALLOW_ORIGINS"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds" env:"READ_TIMEOUT_SECONDS"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds" env:"WRITE_TIMEOUT_SECONDS"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds" env:"IDLE_TIMEOUT_SECONDS"`
	BodyLimit    string `xml:"BodyLimit" env:"BODY_LIMIT"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory" env:"DATA_DIR"`
	UploadsDirectory string `xml:"UploadsDirectory" env:"UPLOADS_DIR"`
	OutputsDirectory string `xml:"OutputsDirectory" env:"OUTPUTS_DIR"`
	TempDirectory    string `xml:"TempDirectory" env:"TEMP_DIR"`
}

// ScalingConfig holds the defaults applied when a request does not say
// otherwise, and how long finished background jobs are kept.
type ScalingConfig struct {
	FixNavigation          bool `xml:"FixNavigation" env:"FIX_NAVIGATION"`
	ScaleDrawingSize       bool `xml:"ScaleDrawingSize" env:"SCALE_DRAWING_SIZE"`
	JobRetentionMinutes    int  `xml:"JobRetentionMinutes" env:"JOB_RETENTION_MINUTES"`
	CleanupIntervalMinutes int  `xml:"CleanupIntervalMinutes" env:"CLEANUP_INTERVAL_MINUTES"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowFileDeletion bool   `xml:"AllowFileDeletion" env:"ALLOW_FILE_DELETION"`
	AllowedFileTypes  string `xml:"AllowedFileTypes" env:"ALLOWED_FILE_TYPES"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" env:"LOG_LEVEL"`
	LogFile              string `xml:"LogFile" env:"LOG_FILE"`
	LogMaxSizeMB         int    `xml:"LogMaxSizeMB" env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups        int    `xml:"LogMaxBackups" env:"LOG_MAX_BACKUPS"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging" env:"ENABLE_REQUEST_LOGGING"`
	SummaryCacheEntries  int64  `xml:"SummaryCacheEntries" env:"SUMMARY_CACHE_ENTRIES"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  60,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "1G",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			OutputsDirectory: "./data/outputs",
			TempDirectory:    "./data/temp",
		},
		Scaling: ScalingConfig{
			FixNavigation:          false,
			ScaleDrawingSize:       false,
			JobRetentionMinutes:    60,
			CleanupIntervalMinutes: 10,
		},
		Security: SecurityConfig{
			AllowFileDeletion: true,
			AllowedFileTypes:  ".zip,.fvttadv",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogMaxSizeMB:         50,
			LogMaxBackups:        3,
			EnableRequestLogging: true,
			SummaryCacheEntries:  1000,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := config.applyEnvironmentOverrides(); err != nil {
			return nil, err
		}
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Adventure Scaler Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides lets SCALER_* variables override file values.
// Unset variables leave the loaded value alone.
func (c *AppConfig) applyEnvironmentOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.OutputsDirectory,
		&c.Storage.TempDirectory,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	if c.Advanced.LogFile != "" && !filepath.IsAbs(c.Advanced.LogFile) {
		c.Advanced.LogFile = filepath.Join(configDir, c.Advanced.LogFile)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetOutputDir returns the absolute directory for scaled archives
func (c *AppConfig) GetOutputDir() string {
	return c.Storage.OutputsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.OutputsDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
