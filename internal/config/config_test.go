package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no default timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "bbolt" || cfg.StorageTTL != 30*24*time.Hour {
		t.Fatalf("unexpected storage defaults %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:8080/api/v1/public/")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("STORAGE_TYPE", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api/v1/public" {
		t.Fatalf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 7*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("StorageType = %s", cfg.StorageType)
	}
}

func TestStoragePathFollowsType(t *testing.T) {
	t.Setenv("STORAGE_TYPE", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/journal.sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageType != "sqlite" || cfg.StoragePath() != "/tmp/journal.sqlite" {
		t.Fatalf("unexpected storage %q at %q", cfg.StorageType, cfg.StoragePath())
	}

	cfg.StorageType = "bbolt"
	if cfg.StoragePath() != cfg.BBoltPath {
		t.Fatalf("bbolt path = %q", cfg.StoragePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"relative base url": {"API_BASE_URL": "/api"},
		"negative timeout":  {"REQUEST_TIMEOUT_SECONDS": "-1"},
		"zero ttl":          {"STORAGE_TTL_SECONDS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
