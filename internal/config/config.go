package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	AdminToken        string        `env:"ADMIN_TOKEN"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:","`
	SessionCookie     string        `env:"SESSION_COOKIE" envDefault:"chessroom_session"`
	SecureCookie      bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
}

type StoreConfig struct {
	Backend     string        `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL"`
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"chessroom.db"`
	RecordTTL   time.Duration `env:"REDIS_RECORD_TTL" envDefault:"24h"`
}

type RulesConfig struct {
	Backend       string        `env:"RULES_BACKEND" envDefault:"native"`
	BridgeCommand string        `env:"RULES_BRIDGE_COMMAND"`
	RemoteURL     string        `env:"RULES_REMOTE_URL"`
	Timeout       time.Duration `env:"RULES_TIMEOUT" envDefault:"5s"`
}

type LiveConfig struct {
	Interval    time.Duration `env:"LIVE_INTERVAL" envDefault:"500ms"`
	MaxDuration time.Duration `env:"LIVE_MAX_DURATION" envDefault:"10m"`
	MaxErrors   int           `env:"LIVE_MAX_ERRORS" envDefault:"5"`
	BackoffBase time.Duration `env:"LIVE_BACKOFF_BASE" envDefault:"1s"`
	BackoffMax  time.Duration `env:"LIVE_BACKOFF_MAX" envDefault:"8s"`
}

// MaxTicks converts the duration ceiling into cadence ticks.
func (l LiveConfig) MaxTicks() int {
	if l.Interval <= 0 {
		return 0
	}
	return int(l.MaxDuration / l.Interval)
}

type LogConfig struct {
	Level     string `env:"LOG_LEVEL" envDefault:"info"`
	Format    string `env:"LOG_FORMAT" envDefault:"legacy"`
	ToConsole bool   `env:"LOG_TO_CONSOLE" envDefault:"true"`
	ToFile    bool   `env:"LOG_TO_FILE" envDefault:"false"`
	File      string `env:"LOG_FILE" envDefault:"logs/chess-room.log"`
	Caller    bool   `env:"LOG_CALLER" envDefault:"false"`
}

type ArchiveConfig struct {
	Enabled     bool   `env:"ARCHIVE_ENABLED" envDefault:"false"`
	DatabaseURL string `env:"ARCHIVE_DATABASE_URL"`
}

type MessagesConfig struct {
	Dir string `env:"MESSAGES_DIR"`
}

type AppConfig struct {
	Server   ServerConfig
	Store    StoreConfig
	Rules    RulesConfig
	Live     LiveConfig
	Log      LogConfig
	Archive  ArchiveConfig
	Messages MessagesConfig
}

// Load reads an optional .env file, then the process environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLog reads only the logging section, for tools that need nothing else.
func LoadLog() (LogConfig, error) {
	_ = godotenv.Load()
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func normalize(cfg *AppConfig) {
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Rules.Backend = strings.ToLower(strings.TrimSpace(cfg.Rules.Backend))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Archive.DatabaseURL == "" {
		cfg.Archive.DatabaseURL = cfg.Store.DatabaseURL
	}
	origins := cfg.Server.CORSOrigins[:0]
	for _, o := range cfg.Server.CORSOrigins {
		if s := strings.TrimSpace(o); s != "" {
			origins = append(origins, s)
		}
	}
	cfg.Server.CORSOrigins = origins
}

func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "redis":
		if strings.TrimSpace(c.Store.RedisURL) == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORE_BACKEND=redis"))
		}
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unknown backend %q", c.Store.Backend))
	}

	switch c.Rules.Backend {
	case "native":
	case "bridge":
		if strings.TrimSpace(c.Rules.BridgeCommand) == "" {
			errs = append(errs, errors.New("RULES_BRIDGE_COMMAND is required when RULES_BACKEND=bridge"))
		}
	case "remote":
		if strings.TrimSpace(c.Rules.RemoteURL) == "" {
			errs = append(errs, errors.New("RULES_REMOTE_URL is required when RULES_BACKEND=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("RULES_BACKEND: unknown backend %q", c.Rules.Backend))
	}

	if c.Live.Interval <= 0 {
		errs = append(errs, errors.New("LIVE_INTERVAL must be positive"))
	}
	if c.Live.MaxDuration < c.Live.Interval {
		errs = append(errs, errors.New("LIVE_MAX_DURATION must be at least LIVE_INTERVAL"))
	}
	if c.Live.MaxErrors <= 0 {
		errs = append(errs, errors.New("LIVE_MAX_ERRORS must be positive"))
	}
	if c.Live.BackoffBase <= 0 || c.Live.BackoffMax < c.Live.BackoffBase {
		errs = append(errs, errors.New("LIVE_BACKOFF_BASE must be positive and not above LIVE_BACKOFF_MAX"))
	}
	if c.Archive.Enabled && strings.TrimSpace(c.Archive.DatabaseURL) == "" {
		errs = append(errs, errors.New("ARCHIVE_DATABASE_URL or DATABASE_URL is required when ARCHIVE_ENABLED=true"))
	}
	for _, o := range c.Server.CORSOrigins {
		if strings.Contains(o, "*") {
			errs = append(errs, errors.New("CORS_ORIGINS must list explicit origins; a wildcard is refused while credentials are allowed"))
			break
		}
	}
	if strings.TrimSpace(c.Server.SessionCookie) == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}
	return errors.Join(errs...)
}
