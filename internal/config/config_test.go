package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.BackendURL == "" || cfg.APIName == "" {
		t.Errorf("empty backend defaults: %+v", cfg)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("default concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.OutputMIME != "image/png" {
		t.Errorf("default output MIME = %q", cfg.OutputMIME)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("EVITSAM_BACKEND_URL", "http://localhost:7860")
	t.Setenv("EVITSAM_API_NAME", "/predict")
	t.Setenv("EVITSAM_TIMEOUT", "90s")
	t.Setenv("EVITSAM_CONCURRENCY", "4")
	t.Setenv("EVITSAM_OUTPUT_MIME", "image/jpeg")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.BackendURL != "http://localhost:7860" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if cfg.OutputMIME != "image/jpeg" {
		t.Errorf("OutputMIME = %q", cfg.OutputMIME)
	}
}

func TestFromEnv_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "EVITSAM_TIMEOUT", "soon"},
		{"negative timeout", "EVITSAM_TIMEOUT", "-5s"},
		{"bad concurrency", "EVITSAM_CONCURRENCY", "many"},
		{"zero concurrency", "EVITSAM_CONCURRENCY", "0"},
		{"bad output mime", "EVITSAM_OUTPUT_MIME", "image/x-icon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("expected rejection for %s=%s", tc.key, tc.value)
			}
		})
	}
}
