package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("LEXICON_TEST_NAME", "glossary")
	p := writeConfig(t, "name: ${LEXICON_TEST_NAME}\n")

	cfg := sample{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "glossary" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	cfg := sample{Port: 8080}
	if err := Load(p, &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadIfExistsMissingFile(t *testing.T) {
	cfg := sample{Port: 9000}
	found, err := LoadIfExists(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil || found {
		t.Fatalf("found = %v, err = %v", found, err)
	}
	if cfg.Port != 9000 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadIfExistsParseError(t *testing.T) {
	p := writeConfig(t, "port: [\n")
	cfg := sample{Port: 1}
	if _, err := LoadIfExists(p, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}
