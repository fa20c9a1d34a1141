package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/scythe504/tunequiz-backend/internal/game"
)

const (
	CatalogPostgres = "postgres"
	CatalogCSV      = "csv"
)

type Catalog struct {
	Source  string `mapstructure:"source"`
	CSVPath string `mapstructure:"csv_path"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Rooms            []string      `mapstructure:"rooms"`
	TracksPerRun     int           `mapstructure:"tracks_per_run"`
	RunsBeforeRepeat int           `mapstructure:"runs_before_repeat"`
	PreloadDelay     time.Duration `mapstructure:"preload_delay"`
	RoundDuration    time.Duration `mapstructure:"round_duration"`
	EndingDelay      time.Duration `mapstructure:"ending_delay"`
	RestartDelay     time.Duration `mapstructure:"restart_delay"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	SystemName       string        `mapstructure:"system_name"`
	MaxNicknameLen   int           `mapstructure:"max_nickname_len"`
	KickMinRole      int           `mapstructure:"kick_min_role"`

	BanPurgeInterval  time.Duration `mapstructure:"ban_purge_interval"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	PingPeriod        time.Duration `mapstructure:"ping_period"`
	TrustedUserHeader string        `mapstructure:"trusted_user_header"`

	Catalog     Catalog `mapstructure:"catalog"`
	DatabaseURL string  `mapstructure:"database_url"`
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultConfig()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("rooms", []string{"mixed", "hits", "rock", "rap", "oldies"})
	v.SetDefault("tracks_per_run", d.TracksPerRun)
	v.SetDefault("runs_before_repeat", d.RunsBeforeRepeat)
	v.SetDefault("preload_delay", d.PreloadDelay)
	v.SetDefault("round_duration", d.RoundDuration)
	v.SetDefault("ending_delay", d.EndingDelay)
	v.SetDefault("restart_delay", d.RestartDelay)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("system_name", d.SystemName)
	v.SetDefault("max_nickname_len", d.MaxNicknameLen)
	v.SetDefault("kick_min_role", d.KickMinRole)

	v.SetDefault("ban_purge_interval", "1m")
	v.SetDefault("read_limit", 4096)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("trusted_user_header", "")

	v.SetDefault("catalog.source", CatalogPostgres)
	v.SetDefault("catalog.csv_path", "data/tracks.csv")
	v.SetDefault("database_url", "")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then TUNEQUIZ_*
// variables, later sources winning.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load without .env handling, reading fileName if it exists.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("TUNEQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Strs("rooms", cfg.Rooms).
		Str("catalog", cfg.Catalog.Source).
		Msg("configuration ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Rooms) == 0 {
		errs = append(errs, errors.New("no rooms configured"))
	}
	seen := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if room == "" {
			errs = append(errs, errors.New("empty room name"))
		}
		if seen[room] {
			errs = append(errs, fmt.Errorf("room %q configured twice", room))
		}
		seen[room] = true
	}
	if c.TracksPerRun <= 0 || c.RunsBeforeRepeat <= 0 {
		errs = append(errs, errors.New("tracks_per_run and runs_before_repeat must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"preload_delay":  c.PreloadDelay,
		"round_duration": c.RoundDuration,
		"ending_delay":   c.EndingDelay,
		"restart_delay":  c.RestartDelay,
		"tick_interval":  c.TickInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.TickInterval >= c.RoundDuration {
		errs = append(errs, errors.New("tick_interval must be shorter than round_duration"))
	}
	if c.SystemName == "" {
		errs = append(errs, errors.New("system_name is required"))
	}
	if c.MaxNicknameLen <= 0 {
		errs = append(errs, errors.New("max_nickname_len must be positive"))
	}
	switch c.Catalog.Source {
	case CatalogPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database_url is required with the postgres catalog"))
		}
	case CatalogCSV:
		if c.Catalog.CSVPath == "" {
			errs = append(errs, errors.New("catalog.csv_path is required with the csv catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog source %q", c.Catalog.Source))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Game returns the settings shared by every room.
func (c *Config) Game() game.Config {
	return game.Config{
		TracksPerRun:     c.TracksPerRun,
		RunsBeforeRepeat: c.RunsBeforeRepeat,
		PreloadDelay:     c.PreloadDelay,
		RoundDuration:    c.RoundDuration,
		EndingDelay:      c.EndingDelay,
		RestartDelay:     c.RestartDelay,
		TickInterval:     c.TickInterval,
		SystemName:       c.SystemName,
		MaxNicknameLen:   c.MaxNicknameLen,
		KickMinRole:      c.KickMinRole,
	}
}
