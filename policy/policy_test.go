package policy

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tether.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing tether.toml: %v", err)
	}
	return dir
}

func TestDefault(t *testing.T) {
	p := Default()
	if p.Limits.HopBound != 10 {
		t.Errorf("HopBound = %d, want 10", p.Limits.HopBound)
	}
	if p.Limits.MaxCount != math.MaxInt32 {
		t.Errorf("MaxCount = %d, want MaxInt32", p.Limits.MaxCount)
	}
	if p.Log.Level != "notice" {
		t.Errorf("Level = %q, want notice", p.Log.Level)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default policy invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := writePolicy(t, `
[limits]
hop-bound = 4
max-count = 100

[log]
level = "debug"
`)
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Limits.HopBound != 4 {
		t.Errorf("HopBound = %d, want 4", p.Limits.HopBound)
	}
	if p.Limits.MaxCount != 100 {
		t.Errorf("MaxCount = %d, want 100", p.Limits.MaxCount)
	}
	if p.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", p.Log.Level)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := writePolicy(t, `
[limits]
hop-bound = 3
`)
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Limits.HopBound != 3 {
		t.Errorf("HopBound = %d, want 3", p.Limits.HopBound)
	}
	if p.Limits.MaxCount != math.MaxInt32 {
		t.Errorf("MaxCount = %d, want default MaxInt32", p.Limits.MaxCount)
	}
	if p.Log.Level != "notice" {
		t.Errorf("Level = %q, want default notice", p.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of empty dir should fail")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := writePolicy(t, `[limits
hop-bound = `)
	if _, err := Load(dir); err == nil {
		t.Error("Load of malformed toml should fail")
	}
}

func TestLoadInvalidLimits(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero hop bound", "[limits]\nhop-bound = 0\n"},
		{"negative hop bound", "[limits]\nhop-bound = -1\n"},
		{"zero max count", "[limits]\nmax-count = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePolicy(t, tt.toml)
			if _, err := Load(dir); err == nil {
				t.Error("Load should reject invalid limits")
			}
		})
	}
}
