package common

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Preview  PreviewConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "postgres" | "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr     string
	InboxDir     string
	InboxRate    float64 // files submitted per second from the inbox; 0 = unlimited
	InboxBurst   int
	QueueWorkers int
	QueueSize    int
	JobTimeout   time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	Pdftoppm      string
	HeicConverter string
	TessdataDir   string
	TesseractLang string
	PSM           int
	DPI           int
	MaxPages      int
}

// PipelineConfig holds extraction pipeline tuning.
type PipelineConfig struct {
	ReferenceName     string
	Workers           int
	AnchoredThreshold int
	FallbackThreshold int
	OutlierRatio      float64
	SwapRatio         float64
	VATRate           float64
}

// PreviewConfig holds preview image store configuration.
type PreviewConfig struct {
	Dir      string
	MaxWidth int
	Quality  int
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:     getEnv("GRPC_ADDR", ":8080"),
			InboxDir:     getEnv("INBOX_DIR", ""),
			InboxRate:    getEnvAsFloat64("INBOX_RATE", 2),
			InboxBurst:   getEnvAsInt("INBOX_BURST", 4),
			QueueWorkers: getEnvAsInt("QUEUE_WORKERS", 4),
			QueueSize:    getEnvAsInt("QUEUE_SIZE", 256),
			JobTimeout:   getEnvAsDuration("JOB_TIMEOUT", 3*time.Minute),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			HeicConverter: getEnv("HEIC_CONVERTER", "magick"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			TesseractLang: getEnv("TESSERACT_LANG", "ind"),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			DPI:           getEnvAsInt("PDF_DPI", 300),
			MaxPages:      getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		Pipeline: PipelineConfig{
			ReferenceName:     getEnv("REFERENCE_COMPANY", ""),
			Workers:           getEnvAsInt("PAGE_WORKERS", 4),
			AnchoredThreshold: getEnvAsInt("MATCH_THRESHOLD_ANCHORED", 70),
			FallbackThreshold: getEnvAsInt("MATCH_THRESHOLD_FALLBACK", 80),
			OutlierRatio:      getEnvAsFloat64("DPP_OUTLIER_RATIO", 5),
			SwapRatio:         getEnvAsFloat64("DPP_SWAP_RATIO", 0),
			VATRate:           getEnvAsFloat64("VAT_RATE", 0.11),
		},
		Preview: PreviewConfig{
			Dir:      getEnv("PREVIEW_DIR", "./tmp/previews"),
			MaxWidth: getEnvAsInt("PREVIEW_MAX_WIDTH", 0),
			Quality:  getEnvAsInt("PREVIEW_QUALITY", 85),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the parts of the configuration every command needs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
		}
	case "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.AnchoredThreshold < 0 || c.Pipeline.AnchoredThreshold > 100 ||
		c.Pipeline.FallbackThreshold < 0 || c.Pipeline.FallbackThreshold > 100 {
		return NewAppError("CONFIG_ERROR", "match thresholds must be within 0..100", ErrInvalidInput)
	}
	if c.Pipeline.OutlierRatio < 1 {
		return NewAppError("CONFIG_ERROR", "DPP_OUTLIER_RATIO must be >= 1", ErrInvalidInput)
	}
	if c.Pipeline.SwapRatio < 0 {
		return NewAppError("CONFIG_ERROR", "DPP_SWAP_RATIO must not be negative", ErrInvalidInput)
	}
	if c.Pipeline.VATRate <= 0 || c.Pipeline.VATRate >= 1 {
		return NewAppError("CONFIG_ERROR", "VAT_RATE must be within (0, 1)", ErrInvalidInput)
	}
	return nil
}
