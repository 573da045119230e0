package config

import "testing"

func TestDBConfigValidate(t *testing.T) {
	cfg := DBConfig{Driver: "sqlite", DSN: "file::memory:"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = DBConfig{Driver: "oracle", DSN: "x"}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}

	cfg = DBConfig{Driver: "postgres"}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatalf("expected dev env, got %q", app.Env)
	}
	app = AppConfig{Env: "prod"}
	if !app.IsProd() || app.IsDev() {
		t.Fatalf("expected prod env, got %q", app.Env)
	}
}
