package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "linkdex.db" {
		t.Errorf("Expected default db path linkdex.db, got %s", cfg.DBPath)
	}
	if cfg.JWTExpiryMinutes != 60 {
		t.Errorf("Expected default token expiry of 60 minutes, got %d", cfg.JWTExpiryMinutes)
	}
	if cfg.AppEnv != "local" {
		t.Errorf("Expected default app env local, got %s", cfg.AppEnv)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LINKDEX_DB_PATH", "/tmp/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090 from environment, got %s", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected db path /tmp/test.db from environment, got %s", cfg.DBPath)
	}
}
