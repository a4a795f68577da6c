package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/gyeh/readmitrisk/internal/source"
)

// Env holds defaults read from READMIT_* environment variables. Command-line
// flags override them.
type Env struct {
	DSN          string        `mapstructure:"DSN"`
	Port         int           `mapstructure:"PORT"`
	Forest       string        `mapstructure:"FOREST"`
	Workers      int           `mapstructure:"WORKERS"`
	LogFormat    string        `mapstructure:"LOG_FORMAT"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	Source       string        `mapstructure:"SOURCE"`
	MongoURL     string        `mapstructure:"MONGO_URL"`
	MongoTimeout time.Duration `mapstructure:"MONGO_TIMEOUT"`
}

// LoadEnv reads READMIT_* variables, falling back to DATABASE_URL for the DSN.
func LoadEnv() (*Env, error) {
	v := viper.New()
	v.SetEnvPrefix("READMIT")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("WORKERS", 0)
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SOURCE", SourceParquet)
	v.SetDefault("MONGO_TIMEOUT", "10s")

	for _, key := range []string{"DSN", "PORT", "FOREST", "WORKERS", "LOG_FORMAT", "LOG_LEVEL", "SOURCE", "MONGO_URL", "MONGO_TIMEOUT"} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("DATABASE_URL", "DATABASE_URL")

	env := &Env{}
	if err := v.Unmarshal(env); err != nil {
		return nil, fmt.Errorf("unmarshal env: %w", err)
	}
	if env.DSN == "" {
		env.DSN = v.GetString("DATABASE_URL")
	}
	return env, nil
}

// Defaults returns a Config seeded from env.
func (e *Env) Defaults() Config {
	return Config{
		DSN:          e.DSN,
		LogFormat:    e.LogFormat,
		LogLevel:     e.LogLevel,
		Source:       e.Source,
		MongoURL:     e.MongoURL,
		MongoTimeout: e.MongoTimeout,
		Collections:  source.DefaultCollections,
		ForestPath:   e.Forest,
		Workers:      e.Workers,
		Port:         e.Port,
	}
}
