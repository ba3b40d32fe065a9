package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// SimConfig holds the settings for a dungeonwalk run.
type SimConfig struct {
	Generation GenerationConfig `yaml:"generation"`
	Simulation SimulationConfig `yaml:"simulation"`
	Stream     StreamConfig     `yaml:"stream"`
	Journal    JournalConfig    `yaml:"journal"`
}

// GenerationConfig holds dungeon generator settings.
type GenerationConfig struct {
	// Rooms is the number of rooms to grow, not counting the goal chain.
	Rooms int `yaml:"rooms"`

	// MaxRetries bounds how many fresh attempts the generator makes when
	// no door can take the goal room.
	MaxRetries int `yaml:"max_retries"`

	// TemplateFile replaces the built-in room templates when set.
	TemplateFile string `yaml:"template_file"`

	// RosterFile replaces the built-in NPC roster when set.
	RosterFile string `yaml:"roster_file"`
}

// SimulationConfig holds tick loop settings.
type SimulationConfig struct {
	Level string `yaml:"level"`

	// Seed drives every random choice. 0 means pick one from the clock.
	Seed int64 `yaml:"seed"`

	TickSeconds  float64 `yaml:"tick_seconds"`
	MaxTicks     int     `yaml:"max_ticks"`
	HeroSpeed    float64 `yaml:"hero_speed"` // pixels per second
	SearchBudget int     `yaml:"search_budget"`

	// RealTime paces ticks against the wall clock instead of running flat out.
	RealTime bool `yaml:"real_time"`
}

// StreamConfig holds spectator feed settings.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// SnapshotInterval is how often snapshots are pushed to spectators.
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`

	// Connection limits, 0 disables a limit.
	MaxPerIP int `yaml:"max_per_ip"`
	MaxTotal int `yaml:"max_total"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means the socket address is
	// always the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// JournalConfig holds run journal settings.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`

	// Driver specifies which database to use: "sqlite" or "postgres"
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DefaultConfig returns a SimConfig with the stock settings.
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Generation: GenerationConfig{
			Rooms:      5,
			MaxRetries: 50,
		},
		Simulation: SimulationConfig{
			Level:        "simple_gate",
			TickSeconds:  0.1,
			MaxTicks:     20000,
			HeroSpeed:    150,
			SearchBudget: 1000,
		},
		Stream: StreamConfig{
			Address:          "localhost:8080",
			AllowedOrigins:   []string{}, // Same-origin only by default
			SnapshotInterval: 100 * time.Millisecond,
			MaxPerIP:         5,
			MaxTotal:         50,
			TrustedProxies:   []string{},
		},
		Journal: JournalConfig{
			Driver:     "sqlite",
			SQLitePath: "data/dungeonwalk.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, the defaults are used.
func LoadConfig(path string) (*SimConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return config, err
	}
	return config, nil
}

// LoadDotEnv loads variables from a .env file into the environment. A
// missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies DUNGEONWALK_* environment overrides.
func (c *SimConfig) ApplyEnv() error {
	if v := os.Getenv("DUNGEONWALK_ROOMS"); v != "" {
		rooms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DUNGEONWALK_ROOMS=%q", ErrInvalidConfig, v)
		}
		c.Generation.Rooms = rooms
	}
	if v := os.Getenv("DUNGEONWALK_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DUNGEONWALK_SEED=%q", ErrInvalidConfig, v)
		}
		c.Simulation.Seed = seed
	}
	if v := os.Getenv("DUNGEONWALK_LEVEL"); v != "" {
		c.Simulation.Level = v
	}
	if v := os.Getenv("DUNGEONWALK_JOURNAL_DRIVER"); v != "" {
		c.Journal.Driver = v
	}
	if v := os.Getenv("DUNGEONWALK_PG_PASSWORD"); v != "" {
		c.Journal.Postgres.Password = v
	}
	return nil
}

// Validate checks that the settings can drive a run.
func (c *SimConfig) Validate() error {
	var problems []string
	if c.Generation.Rooms < 1 {
		problems = append(problems, fmt.Sprintf("generation.rooms must be at least 1, got %d", c.Generation.Rooms))
	}
	if c.Generation.MaxRetries < 1 {
		problems = append(problems, fmt.Sprintf("generation.max_retries must be at least 1, got %d", c.Generation.MaxRetries))
	}
	if c.Simulation.TickSeconds <= 0 {
		problems = append(problems, "simulation.tick_seconds must be positive")
	}
	if c.Simulation.MaxTicks < 1 {
		problems = append(problems, "simulation.max_ticks must be at least 1")
	}
	if c.Simulation.HeroSpeed <= 0 {
		problems = append(problems, "simulation.hero_speed must be positive")
	}
	for _, proxy := range c.Stream.TrustedProxies {
		if !validProxy(proxy) {
			problems = append(problems, fmt.Sprintf("stream.trusted_proxies: %q is not an IP or CIDR", proxy))
		}
	}
	if c.Journal.Driver != "sqlite" && c.Journal.Driver != "postgres" {
		problems = append(problems, fmt.Sprintf("journal.driver must be sqlite or postgres, got %q", c.Journal.Driver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// TickDuration returns the simulated time per tick.
func (c *SimulationConfig) TickDuration() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *StreamConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// IsTrustedProxy reports whether ip matches an entry of TrustedProxies.
func (c *StreamConfig) IsTrustedProxy(ip string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, proxy := range c.TrustedProxies {
		if _, network, err := net.ParseCIDR(proxy); err == nil {
			if network.Contains(addr) {
				return true
			}
			continue
		}
		if trusted := net.ParseIP(proxy); trusted != nil && trusted.Equal(addr) {
			return true
		}
	}
	return false
}

func validProxy(proxy string) bool {
	if _, _, err := net.ParseCIDR(proxy); err == nil {
		return true
	}
	return net.ParseIP(proxy) != nil
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
