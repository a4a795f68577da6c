package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/readmitrisk/internal/source"
)

// Source kinds.
const (
	SourceParquet  = "parquet"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

// Config holds all runtime configuration for a readmitrisk run.
type Config struct {
	DSN          string
	LogFormat    string // "text" or "json"
	LogLevel     string
	Source       string // parquet, postgres or mongo
	Files        source.Files
	MongoURL     string
	MongoTimeout time.Duration
	Collections  source.Collections
	ForestPath   string
	Workers      int
	Strict       bool
	Save         bool
	Truncate     bool
	Port         int
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Source  string       `yaml:"source"`
	Files   source.Files `yaml:"files"`
	Forest  string       `yaml:"forest"`
	Workers int          `yaml:"workers"`
	Strict  *bool        `yaml:"strict"`
	Mongo   struct {
		URL         string             `yaml:"url"`
		Collections source.Collections `yaml:"collections"`
	} `yaml:"mongo"`
}

// LoadFromFile reads a YAML config file and merges its non-empty values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	setIf(&c.Source, yc.Source)
	setIf(&c.Files.Admissions, yc.Files.Admissions)
	setIf(&c.Files.Comorbidities, yc.Files.Comorbidities)
	setIf(&c.Files.Patients, yc.Files.Patients)
	setIf(&c.ForestPath, yc.Forest)
	setIf(&c.MongoURL, yc.Mongo.URL)
	setIf(&c.Collections.Admissions, yc.Mongo.Collections.Admissions)
	setIf(&c.Collections.Comorbidities, yc.Mongo.Collections.Comorbidities)
	setIf(&c.Collections.Patients, yc.Mongo.Collections.Patients)
	if yc.Workers != 0 {
		c.Workers = yc.Workers
	}
	if yc.Strict != nil {
		c.Strict = *yc.Strict
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks that the selected source is fully configured.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}
	switch c.Source {
	case SourceParquet:
		return c.ValidateFiles()
	case SourcePostgres:
		if c.DSN == "" {
			return fmt.Errorf("--dsn or READMIT_DSN is required for the postgres source")
		}
	case SourceMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("--mongo-url or READMIT_MONGO_URL is required for the mongo source")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)", c.Source, SourceParquet, SourcePostgres, SourceMongo)
	}
	return nil
}

// ValidateFiles checks that every Parquet source file is set and readable.
func (c *Config) ValidateFiles() error {
	for _, f := range []struct{ flag, path string }{
		{"--admissions", c.Files.Admissions},
		{"--comorbidities", c.Files.Comorbidities},
		{"--patients", c.Files.Patients},
	} {
		if f.path == "" {
			return fmt.Errorf("%s is required", f.flag)
		}
		if _, err := os.Stat(f.path); err != nil {
			return fmt.Errorf("file not accessible: %w", err)
		}
	}
	return nil
}

// ValidateForest checks that the forest file is set and readable.
func (c *Config) ValidateForest() error {
	if c.ForestPath == "" {
		return fmt.Errorf("--forest or READMIT_FOREST is required")
	}
	if _, err := os.Stat(c.ForestPath); err != nil {
		return fmt.Errorf("forest not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks the source and the DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or READMIT_DSN is required")
	}
	return nil
}
