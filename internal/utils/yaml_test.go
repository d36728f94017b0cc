package utils

import (
	"os"
	"path/filepath"
	"testing"
)

type testSettings struct {
	URL   string `yaml:"url"`
	Limit int    `yaml:"limit"`
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.yaml")

	content := []byte("url: http://localhost:8000\nlimit: 42\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	var result testSettings
	if err := LoadYAML(path, &result); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	if result.URL != "http://localhost:8000" {
		t.Errorf("URL = %q, want %q", result.URL, "http://localhost:8000")
	}
	if result.Limit != 42 {
		t.Errorf("Limit = %d, want %d", result.Limit, 42)
	}
}

func TestLoadYAML_NotFound(t *testing.T) {
	var s testSettings
	err := LoadYAML("/nonexistent/path.yaml", &s)
	if err == nil {
		t.Error("LoadYAML() expected error for nonexistent file")
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("url: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var s testSettings
	if err := LoadYAML(path, &s); err == nil {
		t.Error("LoadYAML() expected error for invalid YAML")
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("limit: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := testSettings{URL: "http://default", Limit: 20}
	if err := LoadYAML(path, &s); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	if s.URL != "http://default" {
		t.Errorf("URL = %q, want default kept", s.URL)
	}
	if s.Limit != 5 {
		t.Errorf("Limit = %d, want 5", s.Limit)
	}
}

func TestSaveYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "test.yaml")

	entity := &testSettings{URL: "http://saved", Limit: 100}
	if err := SaveYAML(entity, path, 0600); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	var loaded testSettings
	if err := LoadYAML(path, &loaded); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if loaded != *entity {
		t.Errorf("loaded = %+v, want %+v", loaded, *entity)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %o, want 600", perm)
	}
}
