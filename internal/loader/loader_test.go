package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "both.yml"), "a: 1\n")
	writeFile(t, filepath.Join(tmpDir, "both.json"), `{"a": 2}`)
	writeFile(t, filepath.Join(tmpDir, "only.json"), `{"a": 3}`)
	writeFile(t, filepath.Join(tmpDir, "exact.yaml"), "a: 4\n")
	if err := os.Mkdir(filepath.Join(tmpDir, "dir.yml"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{name: "exact yml file", ref: "both.yml", want: "both.yml"},
		{name: "yml preferred over json", ref: "both", want: "both.yml"},
		{name: "json fallback", ref: "only", want: "only.json"},
		{name: "exact yaml file", ref: "exact.yaml", want: "exact.yaml"},
		{name: "exact json file", ref: "only.json", want: "only.json"},
		{name: "directory is not a document", ref: "dir", wantErr: true},
		{name: "missing", ref: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(filepath.Join(tmpDir, tt.ref))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if want := filepath.Join(tmpDir, tt.want); got != want {
				t.Errorf("ResolvePath() = %v, want %v", got, want)
			}
		})
	}
}

func TestResolvePath_NotFoundNamesCandidates(t *testing.T) {
	ref := filepath.Join(t.TempDir(), "vagrant")

	_, err := ResolvePath(ref)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	for _, candidate := range []string{ref + ".yml", ref + ".json"} {
		if !strings.Contains(err.Error(), candidate) {
			t.Errorf("Expected error to mention %s, got %q", candidate, err.Error())
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "vagrant.yml")
	jsonPath := filepath.Join(tmpDir, "local.json")
	writeFile(t, yamlPath, "includes: [local]\nmachines:\n  - name: web\n")
	writeFile(t, jsonPath, `{"machines": [{"name": "db"}]}`)

	doc, err := LoadFromFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !doc.Has("includes") || !doc.Has("machines") {
		t.Errorf("Expected includes and machines keys, got %v", doc.Keys())
	}

	doc, err = LoadFromFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !doc.Has("machines") {
		t.Errorf("Expected machines key, got %v", doc.Keys())
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	badPath := filepath.Join(tmpDir, "bad.yml")
	writeFile(t, badPath, "{invalid yaml content")
	txtPath := filepath.Join(tmpDir, "notes.txt")
	writeFile(t, txtPath, "a: 1")

	tests := []struct {
		name string
		path string
	}{
		{name: "invalid yaml", path: badPath},
		{name: "unknown extension", path: txtPath},
		{name: "missing file", path: filepath.Join(tmpDir, "missing.yml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFile(tt.path); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.yml")
	writeFile(t, src, "project: demo\nmachines:\n  - name: web\n    autostart: true\n")

	doc, err := LoadFromFile(src)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	for _, name := range []string{"out.yml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			if err := SaveToFile(doc, path); err != nil {
				t.Fatalf("SaveToFile() error = %v", err)
			}
			back, err := LoadFromFile(path)
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			if project, _ := back.String("project"); project != "demo" {
				t.Errorf("Expected project 'demo', got %q", project)
			}
		})
	}
}
