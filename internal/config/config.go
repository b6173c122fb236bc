package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBSITE_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Transport TransportConfig `yaml:"transport" envPrefix:"TRANSPORT_"`
	DB        DBConfig        `yaml:"db" envPrefix:"DB_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Scope     ScopeConfig     `yaml:"scope" envPrefix:"SCOPE_"`
	Export    ExportConfig    `yaml:"export" envPrefix:"EXPORT_"`
	Sync      SyncConfig      `yaml:"sync" envPrefix:"SYNC_"`
}

type ServerConfig struct {
	Host        string   `yaml:"host" env:"HOST"`
	Port        int      `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"MODE" validate:"oneof=http stdio"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"PATH" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	// Path enables a rotated log file in addition to the console.
	Path       string `yaml:"path" env:"PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS" validate:"min=0"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// StrictRoles rejects unknown roles instead of granting the limited scope.
	StrictRoles bool `yaml:"strict_roles" env:"STRICT_ROLES"`
	// RoleHeader carries the role when auth is disabled.
	RoleHeader string `yaml:"role_header" env:"ROLE_HEADER"`
	// DefaultRole is used by MCP sessions that carry no role, such as stdio.
	DefaultRole string `yaml:"default_role" env:"DEFAULT_ROLE"`
}

type ScopeConfig struct {
	PolicyPath string `yaml:"policy_path" env:"POLICY_PATH"`
	// Portfolio selects the projects of a project-executive by portfolio name.
	Portfolio string `yaml:"portfolio" env:"PORTFOLIO"`
	// PortfolioProjects lists them explicitly and wins over Portfolio.
	PortfolioProjects []string `yaml:"portfolio_projects" env:"PORTFOLIO_PROJECTS"`
	SingleProject     string   `yaml:"single_project" env:"SINGLE_PROJECT"`
}

type ExportConfig struct {
	Dir   string        `yaml:"dir" env:"DIR"`
	Delay time.Duration `yaml:"delay" env:"DELAY"`
}

type SyncConfig struct {
	Delay time.Duration `yaml:"delay" env:"DELAY"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "jobsite.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Auth: AuthConfig{
			RoleHeader:  "X-Jobsite-Role",
			DefaultRole: "executive",
		},
		Scope: ScopeConfig{
			Portfolio:     "west",
			SingleProject: "harbor-tower",
		},
		Export: ExportConfig{
			Dir:   "exports",
			Delay: 500 * time.Millisecond,
		},
		Sync: SyncConfig{
			Delay: time.Second,
		},
	}
}

// Load reads configuration from .env files, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
