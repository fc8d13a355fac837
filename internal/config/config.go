// Package config holds the runtime configuration for the agent process:
// defaults suitable for the hosted backend, overridable through environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alex-li-fetchai/evitsam-agent/internal/sam"
)

// Config is the resolved process configuration.
type Config struct {
	// BackendURL is the base URL of the segmentation backend.
	BackendURL string

	// APIName is the predict route on the backend.
	APIName string

	// Timeout bounds one inference call.
	Timeout time.Duration

	// Concurrency is the admission gate size: how many inference calls may
	// be in flight at once. 1 serializes calls for a non-reentrant backend.
	Concurrency int64

	// OutputMIME is the encoding of reply images.
	OutputMIME string

	// LogLevel enables debug logging when set to "debug".
	LogLevel string
}

// Default returns the configuration used when no environment overrides are
// present: the hosted EfficientViT-SAM endpoint, serialized access, PNG out.
func Default() *Config {
	return &Config{
		BackendURL:  sam.DefaultBaseURL,
		APIName:     sam.DefaultAPIName,
		Timeout:     sam.DefaultTimeout,
		Concurrency: 1,
		OutputMIME:  "image/png",
	}
}

// FromEnv builds a Config from defaults plus EVITSAM_* environment
// variables. Malformed values are configuration errors, not silently
// ignored.
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("EVITSAM_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("EVITSAM_API_NAME"); v != "" {
		cfg.APIName = v
	}
	if v := os.Getenv("EVITSAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("EVITSAM_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("EVITSAM_TIMEOUT: must be positive, got %s", d)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("EVITSAM_CONCURRENCY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("EVITSAM_CONCURRENCY: %w", err)
		}
		if n < 1 {
			return nil, fmt.Errorf("EVITSAM_CONCURRENCY: must be at least 1, got %d", n)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("EVITSAM_OUTPUT_MIME"); v != "" {
		switch v {
		case "image/png", "image/jpeg", "image/webp":
			cfg.OutputMIME = v
		default:
			return nil, fmt.Errorf("EVITSAM_OUTPUT_MIME: unsupported output type %q", v)
		}
	}
	cfg.LogLevel = os.Getenv("EVITSAM_LOG_LEVEL")

	return cfg, nil
}
