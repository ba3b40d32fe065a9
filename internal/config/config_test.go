package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generation.Rooms != 5 || cfg.Generation.MaxRetries != 50 {
		t.Errorf("expected 5 rooms and 50 retries, got %+v", cfg.Generation)
	}
	if cfg.Simulation.TickSeconds != 0.1 || cfg.Simulation.MaxTicks != 20000 {
		t.Errorf("unexpected simulation defaults %+v", cfg.Simulation)
	}
	if cfg.Simulation.HeroSpeed != 150 {
		t.Errorf("expected hero speed 150, got %v", cfg.Simulation.HeroSpeed)
	}
	if len(cfg.Stream.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Stream.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg.Simulation.Level != "simple_gate" {
		t.Errorf("expected default level, got %q", cfg.Simulation.Level)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dungeonwalk.yaml")
	content := `
generation:
  rooms: 8
simulation:
  level: open_goal
  seed: 42
stream:
  enabled: true
  allowed_origins:
    - "https://example.com"
  snapshot_interval: 250ms
journal:
  driver: postgres
  postgres:
    host: db
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generation.Rooms != 8 {
		t.Errorf("expected 8 rooms, got %d", cfg.Generation.Rooms)
	}
	if cfg.Generation.MaxRetries != 50 {
		t.Errorf("expected default retries to survive, got %d", cfg.Generation.MaxRetries)
	}
	if cfg.Simulation.Level != "open_goal" || cfg.Simulation.Seed != 42 {
		t.Errorf("unexpected simulation section %+v", cfg.Simulation)
	}
	if !cfg.Stream.Enabled || cfg.Stream.SnapshotInterval != 250*time.Millisecond {
		t.Errorf("unexpected stream section %+v", cfg.Stream)
	}
	if cfg.Journal.Driver != "postgres" || cfg.Journal.Postgres.Host != "db" || cfg.Journal.Postgres.Port != 5432 {
		t.Errorf("unexpected journal section %+v", cfg.Journal)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("generation: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected a parse error")
	}
	if cfg.Generation.Rooms != 5 {
		t.Errorf("expected defaults on parse error, got %d rooms", cfg.Generation.Rooms)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DUNGEONWALK_ROOMS", "12")
	t.Setenv("DUNGEONWALK_SEED", "99")
	t.Setenv("DUNGEONWALK_LEVEL", "open_goal")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generation.Rooms != 12 || cfg.Simulation.Seed != 99 || cfg.Simulation.Level != "open_goal" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Generation, cfg.Simulation)
	}
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("DUNGEONWALK_ROOMS", "lots")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DUNGEONWALK_SEED=7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DUNGEONWALK_SEED", "")
	os.Unsetenv("DUNGEONWALK_SEED")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("DUNGEONWALK_SEED"); got != "7" {
		t.Errorf("expected DUNGEONWALK_SEED=7, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("expected no error for a missing .env, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *SimConfig)
		field  string
	}{
		{"no rooms", func(c *SimConfig) { c.Generation.Rooms = 0 }, "generation.rooms"},
		{"no retries", func(c *SimConfig) { c.Generation.MaxRetries = 0 }, "generation.max_retries"},
		{"zero tick", func(c *SimConfig) { c.Simulation.TickSeconds = 0 }, "tick_seconds"},
		{"no ticks", func(c *SimConfig) { c.Simulation.MaxTicks = 0 }, "max_ticks"},
		{"still hero", func(c *SimConfig) { c.Simulation.HeroSpeed = 0 }, "hero_speed"},
		{"unknown driver", func(c *SimConfig) { c.Journal.Driver = "mysql" }, "journal.driver"},
		{"bad proxy", func(c *SimConfig) { c.Stream.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }, "stream.trusted_proxies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected %q in %v", tt.field, err)
			}
		})
	}
}

func TestTickDuration(t *testing.T) {
	sim := SimulationConfig{TickSeconds: 0.25}
	if got := sim.TickDuration(); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := &StreamConfig{AllowedOrigins: []string{}}

	if !cfg.IsOriginAllowed("http://localhost:8080", "localhost:8080") {
		t.Error("expected same-origin to be allowed")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:8080") {
		t.Error("expected cross-origin to be rejected")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := &StreamConfig{AllowedOrigins: []string{"*"}}

	if !cfg.IsOriginAllowed("http://anywhere.com", "localhost:8080") {
		t.Error("expected wildcard to allow any origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	cfg := &StreamConfig{AllowedOrigins: []string{"https://example.com"}}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:8080") {
		t.Error("expected listed origin to be allowed")
	}
	if cfg.IsOriginAllowed("https://other.com", "localhost:8080") {
		t.Error("expected unlisted origin to be rejected")
	}
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := &StreamConfig{TrustedProxies: []string{"10.0.0.0/8", "192.168.1.5", "::1"}}

	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.1.2.3", true},     // Inside CIDR
		{"192.168.1.5", true},  // Exact IP
		{"192.168.1.6", false}, // Neighbor of exact IP
		{"::1", true},          // IPv6 loopback
		{"8.8.8.8", false},     // Outside everything
		{"not-an-ip", false},   // Unparseable
	}
	for _, tt := range tests {
		if got := cfg.IsTrustedProxy(tt.ip); got != tt.expected {
			t.Errorf("IsTrustedProxy(%q) = %v, want %v", tt.ip, got, tt.expected)
		}
	}

	empty := &StreamConfig{}
	if empty.IsTrustedProxy("127.0.0.1") {
		t.Error("expected no trusted proxies by default")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin   string
		host     string
		expected bool
	}{
		{"", "localhost:8080", true},                       // No origin header
		{"http://localhost:8080", "localhost:8080", true},  // HTTP match
		{"https://localhost:8080", "localhost:8080", true}, // HTTPS match
		{"http://localhost:8080/", "localhost:8080", true}, // Trailing slash
		{"http://example.com", "localhost:8080", false},    // Different host
		{"http://localhost:3000", "localhost:8080", false}, // Different port
	}

	for _, tt := range tests {
		if got := isSameOrigin(tt.origin, tt.host); got != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.expected)
		}
	}
}

func TestShippedConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "data", "dungeonwalk.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped config does not validate: %v", err)
	}
	if cfg.Stream.SnapshotInterval != 100*time.Millisecond {
		t.Errorf("expected a 100ms snapshot interval, got %v", cfg.Stream.SnapshotInterval)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Postgres.User != "dungeonwalk" {
		t.Errorf("unexpected journal section %+v", cfg.Journal)
	}
}
