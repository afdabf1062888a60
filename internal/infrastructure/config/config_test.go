package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATA_FILE", "DATA_FORMAT", "PORT", "MIRROR_DRIVER", "READ_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DataFile != "record/records.json" || cfg.DataFormat != "json" {
		t.Errorf("storage defaults = %q/%q", cfg.DataFile, cfg.DataFormat)
	}
	if cfg.Port != "8080" || cfg.ReadTimeout != 30*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("server defaults = %+v", cfg)
	}
	if cfg.MirrorDriver != MirrorNone || cfg.LogLevel != "info" {
		t.Errorf("mirror/log defaults = %q/%q", cfg.MirrorDriver, cfg.LogLevel)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_FILE", "/tmp/records.jsonl")
	t.Setenv("DATA_FORMAT", "JSONL")
	t.Setenv("READ_TIMEOUT", "5")
	t.Setenv("MIRROR_TIMEOUT", "not-a-number")
	t.Setenv("MIRROR_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "host=localhost user=app dbname=records")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DataFile != "/tmp/records.jsonl" || cfg.DataFormat != "jsonl" {
		t.Errorf("storage = %q/%q", cfg.DataFile, cfg.DataFormat)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.MirrorTimeout != 10*time.Second {
		t.Errorf("MirrorTimeout = %v, want default 10s", cfg.MirrorTimeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{DataFile: "records.json", DataFormat: "json"}

	tests := []struct {
		name    string
		edit    func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad format", func(c *Config) { c.DataFormat = "xml" }, true},
		{"empty data file", func(c *Config) { c.DataFile = " " }, true},
		{"unknown mirror", func(c *Config) { c.MirrorDriver = "redis" }, true},
		{"mongo without dsn", func(c *Config) { c.MirrorDriver = MirrorMongo }, true},
		{"mongo with dsn", func(c *Config) { c.MirrorDriver = MirrorMongo; c.MongoURI = "mongodb://localhost:27017" }, false},
		{"postgres without dsn", func(c *Config) { c.MirrorDriver = MirrorPostgres }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.edit(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
