package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Extraction
	StripFieldInstructions bool
	PDFFallbackPdftotext   bool

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentExtract int

	// Upload limits
	MaxUploadBytes int64
	MaxFilesPerJob int

	// Job state
	JobTTL       time.Duration
	CacheEntries int
	StatsWindow  time.Duration
}

// fileConfig mirrors Config for the optional YAML file. Pointer fields
// distinguish "unset" from zero values.
type fileConfig struct {
	Port                   *string        `yaml:"port"`
	APIKey                 *string        `yaml:"apiKey"`
	StripFieldInstructions *bool          `yaml:"stripFieldInstructions"`
	PDFFallbackPdftotext   *bool          `yaml:"pdfFallbackPdftotext"`
	WorkerCount            *int           `yaml:"workerCount"`
	MaxQueueSize           *int           `yaml:"maxQueueSize"`
	MaxConcurrentExtract   *int           `yaml:"maxConcurrentExtract"`
	MaxUploadBytes         *int64         `yaml:"maxUploadBytes"`
	MaxFilesPerJob         *int           `yaml:"maxFilesPerJob"`
	JobTTL                 *time.Duration `yaml:"jobTTL"`
	CacheEntries           *int           `yaml:"cacheEntries"`
	StatsWindow            *time.Duration `yaml:"statsWindow"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		PDFFallbackPdftotext: true,
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentExtract: 5,
		MaxUploadBytes:       52428800, // 50MB
		MaxFilesPerJob:       100,
		JobTTL:               1 * time.Hour,
		CacheEntries:         256,
		StatsWindow:          1 * time.Hour,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// DOCXMERGE_CONFIG (if any), and environment variables, in that order of
// increasing precedence.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCXMERGE_CONFIG"); path != "" {
		var err error
		if cfg, err = LoadFile(path, cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCXMERGE_API_KEY", cfg.APIKey)
	cfg.StripFieldInstructions = envBool("STRIP_FIELD_INSTRUCTIONS", cfg.StripFieldInstructions)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentExtract = envInt("MAX_CONCURRENT_EXTRACT", cfg.MaxConcurrentExtract)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.MaxFilesPerJob = envInt("MAX_FILES_PER_JOB", cfg.MaxFilesPerJob)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.CacheEntries = envInt("CACHE_ENTRIES", cfg.CacheEntries)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	cfg.applyFloors()
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&base.Port, fc.Port)
	set(&base.APIKey, fc.APIKey)
	set(&base.StripFieldInstructions, fc.StripFieldInstructions)
	set(&base.PDFFallbackPdftotext, fc.PDFFallbackPdftotext)
	set(&base.WorkerCount, fc.WorkerCount)
	set(&base.MaxQueueSize, fc.MaxQueueSize)
	set(&base.MaxConcurrentExtract, fc.MaxConcurrentExtract)
	set(&base.MaxUploadBytes, fc.MaxUploadBytes)
	set(&base.MaxFilesPerJob, fc.MaxFilesPerJob)
	set(&base.JobTTL, fc.JobTTL)
	set(&base.CacheEntries, fc.CacheEntries)
	set(&base.StatsWindow, fc.StatsWindow)
	return base, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// applyFloors replaces non-positive limits with their defaults.
func (c *Config) applyFloors() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxConcurrentExtract <= 0 {
		c.MaxConcurrentExtract = d.MaxConcurrentExtract
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.MaxFilesPerJob <= 0 {
		c.MaxFilesPerJob = d.MaxFilesPerJob
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.CacheEntries < 0 {
		c.CacheEntries = 0
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("DOCXMERGE_API_KEY is required")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
