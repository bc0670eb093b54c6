package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/sink"
	"github.com/dgallion1/docchunk/internal/tokenizer"
)

// Output sink kinds.
const (
	SinkLocal = "local"
	SinkMinIO = "minio"
)

type Config struct {
	// Chunking
	ChunkSize     int
	ChunkOverlap  int
	TokenEncoding string

	// Output
	OutputPath string
	OutputSink string
	MinIO      sink.MinIOConfig

	// Batch behavior
	FailurePolicy string
	DocTimeout    time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, is loaded first; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ChunkSize:     envInt("CHUNK_SIZE", 500),
		ChunkOverlap:  envInt("CHUNK_OVERLAP", 50),
		TokenEncoding: envOr("TOKEN_ENCODING", tokenizer.DefaultEncoding),

		OutputPath: envOr("OUTPUT_PATH", "chunks.json"),
		OutputSink: envOr("OUTPUT_SINK", SinkLocal),
		MinIO: sink.MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    envBool("MINIO_USE_SSL", false),
			Bucket:    envOr("MINIO_BUCKET", "chunks"),
		},

		FailurePolicy: envOr("FAILURE_POLICY", string(pipeline.PolicyAbort)),
		DocTimeout:    envDuration("DOC_TIMEOUT", 0),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.DocTimeout < 0 {
		cfg.DocTimeout = 0
	}

	return cfg
}

// Validate checks everything that can be checked before touching a document.
func (c Config) Validate() error {
	if err := c.Chunker().Validate(); err != nil {
		return err
	}
	if _, err := pipeline.ParsePolicy(c.FailurePolicy); err != nil {
		return err
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	switch c.OutputSink {
	case SinkLocal:
	case SinkMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio sink")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET is required for the minio sink")
		}
	default:
		return fmt.Errorf("unknown OUTPUT_SINK %q", c.OutputSink)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Chunker returns the chunking parameters.
func (c Config) Chunker() chunker.Config {
	return chunker.Config{ChunkSize: c.ChunkSize, ChunkOverlap: c.ChunkOverlap}
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
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
