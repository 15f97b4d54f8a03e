package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Debug      bool    `yaml:"debug" env:"DEBUG"`
	Limiter    Limiter `yaml:"limiter"`
	Server     Server  `yaml:"server"`
	DB         DB      `yaml:"db"`
	Auth       Auth    `yaml:"auth"`
	Uploads    Uploads `yaml:"uploads"`
	CORS       CORS    `yaml:"cors"`
	SMTPServer SMTP    `yaml:"smtp"`
	Tasks      Tasks   `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env:"LIMITER_RPS" env-default:"20"`
	Burst   int     `yaml:"burst" env:"LIMITER_BURST" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env:"SERVER_PORT" env-default:"3001"`
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"DB_DSN" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"5s"`
}

// Auth holds token and password settings.
// BcryptCost defaults to bcrypt's default cost; the legacy deployment ran with 5,
// which is too cheap for production and should not be restored.
type Auth struct {
	AccessTokenSecret  string        `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshTokenSecret string        `yaml:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"24h"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"24h"`
	BcryptCost         int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	CookieSecure       bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"true"`
	AllowAdminSignup   bool          `yaml:"allow_admin_signup" env:"ALLOW_ADMIN_SIGNUP" env-default:"true"`
}

type Uploads struct {
	Root          string `yaml:"root" env:"UPLOADS_ROOT" env-default:"public"`
	MaxPosterSize int64  `yaml:"max_poster_size" env:"UPLOADS_MAX_POSTER_SIZE" env-default:"5242880"`
}

type CORS struct {
	TrustedOrigins []string `yaml:"trusted_origins" env:"CORS_TRUSTED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

type SMTP struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env:"SMTP_SENDER" env-default:"Movie Catalog <no-reply@moviecatalog.local>"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
}

type Tasks struct {
	MaxWorkers   int `yaml:"max_workers" env-default:"3"`
	MaxQueueSize int `yaml:"max_queue_size" env-default:"100"`
}

// Load reads the yaml file at configPath when it exists, otherwise configuration
// comes from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.Uploads.MaxPosterSize <= 0 {
		return errors.New("uploads.max_poster_size must be positive")
	}
	return nil
}
