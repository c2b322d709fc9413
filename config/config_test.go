package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "glint.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing glint.toml: %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `
[runtime]
gc-interval = "5s"
max-listener-depth = 8

[log]
verbosity = 2

[snapshot]
store-path = "heap.db"
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Runtime.GCInterval.Std() != 5*time.Second {
		t.Errorf("GCInterval = %s, want 5s", c.Runtime.GCInterval.Std())
	}
	if c.Runtime.MaxListenerDepth != 8 {
		t.Errorf("MaxListenerDepth = %d, want 8", c.Runtime.MaxListenerDepth)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("Verbosity = %d, want 2", c.Log.Verbosity)
	}
	if c.Snapshot.StorePath != "heap.db" {
		t.Errorf("StorePath = %q, want heap.db", c.Snapshot.StorePath)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
[log]
verbosity = 1
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Runtime.GCInterval.Std() != 30*time.Second {
		t.Errorf("GCInterval = %s, want the 30s default", c.Runtime.GCInterval.Std())
	}
	if c.Snapshot.StorePath != "glint-snapshots.db" {
		t.Errorf("StorePath = %q, want the default", c.Snapshot.StorePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load should fail when glint.toml is absent")
	}
}

func TestLoadBadDuration(t *testing.T) {
	dir := writeConfig(t, `
[runtime]
gc-interval = "sometimes"
`)
	if _, err := Load(dir); err == nil {
		t.Error("Load should reject an unparsable duration")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative gc interval", func(c *Config) { c.Runtime.GCInterval = Duration(-time.Second) }},
		{"negative listener depth", func(c *Config) { c.Runtime.MaxListenerDepth = -1 }},
		{"negative verbosity", func(c *Config) { c.Log.Verbosity = -1 }},
		{"empty store path", func(c *Config) { c.Snapshot.StorePath = "" }},
	}
	for _, tc := range cases {
		c := Default()
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: Validate should fail", tc.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}
