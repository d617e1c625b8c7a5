package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/site-planner/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Plan   PlanConfig   `yaml:"plan" mapstructure:"plan"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PlanConfig holds the clustering and siting thresholds.
type PlanConfig struct {
	MaxWeight     float64 `yaml:"max_weight" mapstructure:"max_weight"`
	MinWeight     float64 `yaml:"min_weight" mapstructure:"min_weight"`
	MinDistanceKM float64 `yaml:"min_distance_km" mapstructure:"min_distance_km"`
	Strategy      string  `yaml:"strategy" mapstructure:"strategy"`
	Workers       int     `yaml:"workers" mapstructure:"workers"`
}

// Params converts the plan section into run parameters.
func (p PlanConfig) Params() model.Params {
	return model.Params{
		MaxWeight:     p.MaxWeight,
		MinWeight:     p.MinWeight,
		MinDistanceKM: p.MinDistanceKM,
		Strategy:      model.Strategy(p.Strategy),
		Workers:       p.Workers,
	}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	RateLimit    float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst        int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("plan.max_weight", 6000)
	v.SetDefault("plan.min_weight", 5000)
	v.SetDefault("plan.min_distance_km", 5)
	v.SetDefault("plan.strategy", string(model.StrategySpatial))
	v.SetDefault("plan.workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 5)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings needed by a command mode ("plan" or "serve").
// All problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	if err := c.Plan.Params().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Plan.Workers < 1 || c.Plan.Workers > 64 {
		problems = append(problems, "plan.workers must be between 1 and 64")
	}

	switch mode {
	case "plan":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			problems = append(problems, "server.rate_limit must be > 0")
		}
		if c.Server.Burst < 1 {
			problems = append(problems, "server.burst must be >= 1")
		}
		if c.Server.MaxBodyBytes <= 0 {
			problems = append(problems, "server.max_body_bytes must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
