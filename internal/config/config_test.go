package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gyeh/readmitrisk/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
source: mongo
files:
  admissions: a.parquet
  comorbidities: c.parquet
  patients: p.parquet
forest: forest.json
workers: 4
strict: true
mongo:
  url: mongodb://localhost/PatientReadmission
  collections:
    admissions: adm
`)

	c := Config{Workers: 1, Collections: source.DefaultCollections}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Source != SourceMongo || c.ForestPath != "forest.json" || c.Workers != 4 || !c.Strict {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.Files.Admissions != "a.parquet" || c.Files.Patients != "p.parquet" {
		t.Errorf("unexpected files: %+v", c.Files)
	}
	if c.MongoURL != "mongodb://localhost/PatientReadmission" {
		t.Errorf("MongoURL: got %q", c.MongoURL)
	}
	if c.Collections.Admissions != "adm" || c.Collections.Patients != "dischargepatients" {
		t.Errorf("collections should merge over defaults: %+v", c.Collections)
	}
}

func TestLoadFromFile_KeepsUnsetValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "workers: 0\n")

	c := Config{Source: SourcePostgres, Workers: 3, Strict: true}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Source != SourcePostgres || c.Workers != 3 || !c.Strict {
		t.Errorf("unexpected overrides: %+v", c)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "workers: [1, 2\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	err := c.LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	adm := writeFile(t, dir, "a.parquet", "")
	com := writeFile(t, dir, "c.parquet", "")
	pat := writeFile(t, dir, "p.parquet", "")

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"parquet ok", Config{Source: SourceParquet}, ""},
		{"parquet missing file", Config{Source: SourceParquet}, "file not accessible"},
		{"postgres needs dsn", Config{Source: SourcePostgres}, "--dsn"},
		{"postgres ok", Config{Source: SourcePostgres, DSN: "postgres://x"}, ""},
		{"mongo needs url", Config{Source: SourceMongo}, "--mongo-url"},
		{"unknown source", Config{Source: "hive"}, "unknown source"},
		{"negative workers", Config{Source: SourcePostgres, DSN: "x", Workers: -1}, "--workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			if c.Source == SourceParquet {
				c.Files.Admissions, c.Files.Comorbidities, c.Files.Patients = adm, com, pat
				if tt.wantErr != "" {
					c.Files.Patients = filepath.Join(dir, "missing.parquet")
				}
			}
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateFiles_Required(t *testing.T) {
	c := Config{Source: SourceParquet}
	err := c.ValidateFiles()
	if err == nil || !strings.Contains(err.Error(), "--admissions") {
		t.Fatalf("expected --admissions error, got %v", err)
	}
}

func TestValidateForest(t *testing.T) {
	var c Config
	if err := c.ValidateForest(); err == nil {
		t.Fatal("expected error for empty forest path")
	}
	c.ForestPath = writeFile(t, t.TempDir(), "forest.json", "{}")
	if err := c.ValidateForest(); err != nil {
		t.Fatalf("ValidateForest: %v", err)
	}
}

func TestValidateWithDSN(t *testing.T) {
	c := Config{Source: SourceMongo, MongoURL: "mongodb://localhost"}
	if err := c.ValidateWithDSN(); err == nil {
		t.Fatal("expected DSN error")
	}
	c.DSN = "postgres://x"
	if err := c.ValidateWithDSN(); err != nil {
		t.Fatalf("ValidateWithDSN: %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("READMIT_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://fallback")
	t.Setenv("READMIT_PORT", "9090")
	t.Setenv("READMIT_WORKERS", "3")
	t.Setenv("READMIT_SOURCE", "postgres")
	t.Setenv("READMIT_MONGO_TIMEOUT", "2s")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.DSN != "postgres://fallback" {
		t.Errorf("DSN: got %q", env.DSN)
	}
	if env.Port != 9090 || env.Workers != 3 || env.Source != SourcePostgres {
		t.Errorf("unexpected env: %+v", env)
	}
	if env.MongoTimeout != 2*time.Second {
		t.Errorf("MongoTimeout: got %v", env.MongoTimeout)
	}
	if env.LogFormat != "text" || env.LogLevel != "info" {
		t.Errorf("log defaults: got %q / %q", env.LogFormat, env.LogLevel)
	}

	c := env.Defaults()
	if c.Collections.Comorbidities != "dischargecormorbids" {
		t.Errorf("Defaults should carry collection names: %+v", c.Collections)
	}
}

func TestLoadEnv_PrefixedDSNWins(t *testing.T) {
	t.Setenv("READMIT_DSN", "postgres://primary")
	t.Setenv("DATABASE_URL", "postgres://fallback")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.DSN != "postgres://primary" {
		t.Errorf("DSN: got %q", env.DSN)
	}
}
