// Package config provides Viper-based configuration loading for the survivor simulation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// WorldConfig holds the immutable dimensions and cadence of the simulated world.
type WorldConfig struct {
	Width    int `mapstructure:"width"`
	Height   int `mapstructure:"height"`
	TileSize int `mapstructure:"tile_size"`
	FPS      int `mapstructure:"fps"`
	// Seed drives the tile map noise. Zero means "derive from the clock".
	Seed int64 `mapstructure:"seed"`
}

// TickInterval returns the wall-clock duration of one simulation tick.
//
// Precondition: FPS > 0.
func (w WorldConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(w.FPS)
}

// PlayerConfig holds the player's starting stats.
type PlayerConfig struct {
	Health               int           `mapstructure:"health"`
	Speed                float64       `mapstructure:"speed"`
	Damage               int           `mapstructure:"damage"`
	Defence              int           `mapstructure:"defence"`
	Autoheal             int           `mapstructure:"autoheal"`
	AutohealInterval     time.Duration `mapstructure:"autoheal_interval"`
	ExperienceMultiplier float64       `mapstructure:"experience_multiplier"`
}

// SpawnConfig holds monster spawning settings.
type SpawnConfig struct {
	// Interval is the delay between two spawned monsters.
	Interval time.Duration `mapstructure:"interval"`
	// LevelUpInterval is how often each monster re-evaluates its level multiplier.
	LevelUpInterval time.Duration `mapstructure:"monster_levelup_interval"`
	// PresetsDir is a directory of monster preset YAML files; empty uses built-in presets.
	PresetsDir string `mapstructure:"presets_dir"`
}

// CombatConfig holds combat policy flags.
type CombatConfig struct {
	// ContactDamage applies monster damage on every tick of monster/player overlap,
	// in addition to the monster's own cooldown-gated attack.
	ContactDamage bool `mapstructure:"contact_damage"`
	// CullBullets removes bullets whose centre has left the world bounds.
	CullBullets bool `mapstructure:"cull_bullets"`
}

// GemConfig holds the payload of one buff gem kind.
type GemConfig struct {
	Boost    float64       `mapstructure:"boost"`
	Duration time.Duration `mapstructure:"duration"`
}

// LootConfig holds the drop weights (percent of a [0,100) draw) and gem payloads.
type LootConfig struct {
	NoneWeight       int       `mapstructure:"none_weight"`
	ExperienceWeight int       `mapstructure:"experience_weight"`
	SpeedWeight      int       `mapstructure:"speed_weight"`
	DamageWeight     int       `mapstructure:"damage_weight"`
	DefenceWeight    int       `mapstructure:"defence_weight"`
	HealthWeight     int       `mapstructure:"health_weight"`
	ExperienceAmount int       `mapstructure:"experience_amount"`
	SpeedGem         GemConfig `mapstructure:"speed_gem"`
	DamageGem        GemConfig `mapstructure:"damage_gem"`
	DefenceGem       GemConfig `mapstructure:"defence_gem"`
	HealthGem        GemConfig `mapstructure:"health_gem"`
}

// TotalWeight returns the sum of all drop weights.
func (l LootConfig) TotalWeight() int {
	return l.NoneWeight + l.ExperienceWeight + l.SpeedWeight + l.DamageWeight + l.DefenceWeight + l.HealthWeight
}

// StorageConfig selects and configures the save-slot backend.
type StorageConfig struct {
	// Backend is one of "file", "postgres", "badger".
	Backend string `mapstructure:"backend"`
	// Path is the JSON file (file backend) or database directory (badger backend).
	Path string `mapstructure:"path"`
	// Slot names the save slot used by the postgres and badger backends.
	Slot string `mapstructure:"slot"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// GameConfig groups the sections the simulation core is built from.
// It is passed by value and never mutated after construction.
type GameConfig struct {
	World  WorldConfig
	Player PlayerConfig
	Spawn  SpawnConfig
	Combat CombatConfig
	Loot   LootConfig
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	World    WorldConfig    `mapstructure:"world"`
	Player   PlayerConfig   `mapstructure:"player"`
	Spawn    SpawnConfig    `mapstructure:"spawn"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Loot     LootConfig     `mapstructure:"loot"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Game returns the simulation sections of c.
func (c Config) Game() GameConfig {
	return GameConfig{
		World:  c.World,
		Player: c.Player,
		Spawn:  c.Spawn,
		Combat: c.Combat,
		Loot:   c.Loot,
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Game().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, "metrics.addr must not be empty when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the simulation sections only.
//
// Postcondition: Returns nil iff world, player, spawn and loot settings are usable.
func (g GameConfig) Validate() error {
	var errs []string
	for _, err := range []error{
		validateWorld(g.World),
		validatePlayer(g.Player),
		validateSpawn(g.Spawn),
		validateLoot(g.Loot),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.Width < 1 {
		errs = append(errs, fmt.Sprintf("world.width must be >= 1, got %d", w.Width))
	}
	if w.Height < 1 {
		errs = append(errs, fmt.Sprintf("world.height must be >= 1, got %d", w.Height))
	}
	if w.TileSize < 1 {
		errs = append(errs, fmt.Sprintf("world.tile_size must be >= 1, got %d", w.TileSize))
	}
	if w.FPS < 1 || w.FPS > 1000 {
		errs = append(errs, fmt.Sprintf("world.fps must be 1-1000, got %d", w.FPS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.Health < 1 {
		errs = append(errs, fmt.Sprintf("player.health must be >= 1, got %d", p.Health))
	}
	if p.Speed < 0 {
		errs = append(errs, "player.speed must not be negative")
	}
	if p.Damage < 0 {
		errs = append(errs, "player.damage must not be negative")
	}
	if p.Defence < 0 {
		errs = append(errs, "player.defence must not be negative")
	}
	if p.Autoheal < 0 {
		errs = append(errs, "player.autoheal must not be negative")
	}
	if p.AutohealInterval <= 0 {
		errs = append(errs, "player.autoheal_interval must be > 0")
	}
	if p.ExperienceMultiplier <= 0 {
		errs = append(errs, "player.experience_multiplier must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSpawn(s SpawnConfig) error {
	var errs []string
	if s.Interval <= 0 {
		errs = append(errs, "spawn.interval must be > 0")
	}
	if s.LevelUpInterval <= 0 {
		errs = append(errs, "spawn.monster_levelup_interval must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLoot(l LootConfig) error {
	var errs []string
	weights := map[string]int{
		"none_weight":       l.NoneWeight,
		"experience_weight": l.ExperienceWeight,
		"speed_weight":      l.SpeedWeight,
		"damage_weight":     l.DamageWeight,
		"defence_weight":    l.DefenceWeight,
		"health_weight":     l.HealthWeight,
	}
	for _, name := range []string{"none_weight", "experience_weight", "speed_weight", "damage_weight", "defence_weight", "health_weight"} {
		if weights[name] < 0 {
			errs = append(errs, fmt.Sprintf("loot.%s must not be negative", name))
		}
	}
	if total := l.TotalWeight(); total > 100 {
		errs = append(errs, fmt.Sprintf("loot weights must sum to <= 100, got %d", total))
	}
	if l.ExperienceAmount < 0 {
		errs = append(errs, "loot.experience_amount must not be negative")
	}
	for name, g := range map[string]GemConfig{
		"speed_gem":   l.SpeedGem,
		"damage_gem":  l.DamageGem,
		"defence_gem": l.DefenceGem,
		"health_gem":  l.HealthGem,
	} {
		if g.Boost < 0 {
			errs = append(errs, fmt.Sprintf("loot.%s.boost must not be negative", name))
		}
		if g.Duration < 0 {
			errs = append(errs, fmt.Sprintf("loot.%s.duration must not be negative", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	validBackends := map[string]bool{"file": true, "postgres": true, "badger": true}
	if !validBackends[s.Backend] {
		return fmt.Errorf("storage.backend must be one of [file, postgres, badger], got %q", s.Backend)
	}
	if (s.Backend == "file" || s.Backend == "badger") && s.Path == "" {
		return fmt.Errorf("storage.path must not be empty for the %s backend", s.Backend)
	}
	if (s.Backend == "postgres" || s.Backend == "badger") && s.Slot == "" {
		return fmt.Errorf("storage.slot must not be empty for the %s backend", s.Backend)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SURVIVOR_ prefix
	v.SetEnvPrefix("SURVIVOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults do not validate: " + err.Error())
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("world.width", 3200)
	v.SetDefault("world.height", 3200)
	v.SetDefault("world.tile_size", 64)
	v.SetDefault("world.fps", 60)
	v.SetDefault("world.seed", 0)

	v.SetDefault("player.health", 100)
	v.SetDefault("player.speed", 5.0)
	v.SetDefault("player.damage", 1)
	v.SetDefault("player.defence", 0)
	v.SetDefault("player.autoheal", 1)
	v.SetDefault("player.autoheal_interval", "1s")
	v.SetDefault("player.experience_multiplier", 1.0)

	v.SetDefault("spawn.interval", "400ms")
	v.SetDefault("spawn.monster_levelup_interval", "10s")
	v.SetDefault("spawn.presets_dir", "")

	v.SetDefault("combat.contact_damage", true)
	v.SetDefault("combat.cull_bullets", true)

	v.SetDefault("loot.none_weight", 20)
	v.SetDefault("loot.experience_weight", 55)
	v.SetDefault("loot.speed_weight", 5)
	v.SetDefault("loot.damage_weight", 5)
	v.SetDefault("loot.defence_weight", 5)
	v.SetDefault("loot.health_weight", 5)
	v.SetDefault("loot.experience_amount", 1)
	v.SetDefault("loot.speed_gem.boost", 2.0)
	v.SetDefault("loot.speed_gem.duration", "5s")
	v.SetDefault("loot.damage_gem.boost", 1.0)
	v.SetDefault("loot.damage_gem.duration", "5s")
	v.SetDefault("loot.defence_gem.boost", 2.0)
	v.SetDefault("loot.defence_gem.duration", "5s")
	v.SetDefault("loot.health_gem.boost", 20.0)
	v.SetDefault("loot.health_gem.duration", "0s")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "data/save.json")
	v.SetDefault("storage.slot", "default")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "survivor")
	v.SetDefault("database.password", "survivor")
	v.SetDefault("database.name", "survivor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":2112")
}
