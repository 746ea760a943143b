package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mempirate/docparser/status"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PEPURL != "https://peps.python.org/" || cfg.DocsURL != "https://docs.python.org/3/" {
		t.Errorf("unexpected URLs: %s %s", cfg.PEPURL, cfg.DocsURL)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.HTTP.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level: %s", cfg.Log.Level)
	}
	if diff := cmp.Diff(status.Default(), cfg.ExpectedStatus); diff != "" {
		t.Errorf("unexpected expectation table (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docparser.yaml")

	content := `docs_url: https://docs.python.org/3.12
downloads_dir: /tmp/docs
http:
  timeout: 5s
expected_status:
  F: [Final]
  a: [Active, Accepted]
  none: [Draft]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DocsURL != "https://docs.python.org/3.12/" {
		t.Errorf("docs URL should end with a slash: %s", cfg.DocsURL)
	}
	if cfg.DownloadsDir != "/tmp/docs" {
		t.Errorf("unexpected downloads dir: %s", cfg.DownloadsDir)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.HTTP.Timeout)
	}

	expected := status.Table{
		"F": {"Final"},
		"A": {"Active", "Accepted"},
		"":  {"Draft"},
	}
	if diff := cmp.Diff(expected, cfg.ExpectedStatus); diff != "" {
		t.Errorf("unexpected expectation table (-want +got):\n%s", diff)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCPARSER_PEP_URL", "http://localhost:8080/")
	t.Setenv("DOCPARSER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PEPURL != "http://localhost:8080/" {
		t.Errorf("unexpected PEP URL: %s", cfg.PEPURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level: %s", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("expected_status:\n  F: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing explicit file", path: filepath.Join(dir, "missing.yaml")},
		{name: "empty status set", path: empty},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Load(test.path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
