package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/didact/internal/config"
	"github.com/vango-dev/didact/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCounter(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"initial", []string{"render", "--app=counter"}, "Count: 1"},
		{"clicks", []string{"render", "--app=counter", "--clicks=3"}, "Count: 4"},
		{"sliced", []string{"render", "--app=counter", "--clicks=2", "--steps=1"}, "Count: 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestRenderFibers(t *testing.T) {
	out, err := execute(t, "render", "--app=counter", "--fibers")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"#root", "<Counter>", "h1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, "render", "--app=counter", "--clicks=2", "--steps=1", "--json")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var report renderReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, out)
	}
	if report.App != "counter" {
		t.Errorf("App = %q, want counter", report.App)
	}
	if len(report.Commits) != 3 {
		t.Fatalf("len(Commits) = %d, want 3", len(report.Commits))
	}
	first := report.Commits[0]
	if first.Trigger != "render" {
		t.Errorf("first Trigger = %q, want render", first.Trigger)
	}
	if first.Slices < 2 {
		t.Errorf("first Slices = %d, want at least 2 with one unit per slice", first.Slices)
	}
	if first.Placements == 0 {
		t.Error("first commit placed nothing")
	}
	for i, c := range report.Commits[1:] {
		if c.Trigger != "state" {
			t.Errorf("commit %d Trigger = %q, want state", i+1, c.Trigger)
		}
		if c.Placements != 0 || c.Deletions != 0 {
			t.Errorf("commit %d = %+v, want updates only", i+1, c)
		}
	}
	if !strings.Contains(report.HTML, "Count: 3") {
		t.Errorf("HTML = %q, want Count: 3", report.HTML)
	}
	if len(report.Mutations) == 0 {
		t.Error("no mutations reported")
	}
}

func TestRenderUnknownApp(t *testing.T) {
	_, err := execute(t, "render", "--app=nope")
	if !stderrors.Is(err, errors.New(errors.CodeUnknownComponentName)) {
		t.Errorf("err = %v, want E142", err)
	}
}

func TestRenderNegativeClicks(t *testing.T) {
	if _, err := execute(t, "render", "--clicks=-1"); err == nil {
		t.Error("expected error for negative clicks")
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("output = %q, want file name", out)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "site" {
		t.Errorf("Name = %q, want site", cfg.Name)
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, config.DefaultPort)
	}

	if _, err := execute(t, "init", dir); err == nil {
		t.Error("second init without --force succeeded")
	}
	if _, err := execute(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestLoadServeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	data := `{"server": {"port": 9999, "host": "0.0.0.0"}, "metrics": {"enabled": false}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadServeConfig(serveOptions{configPath: path})
	if err != nil {
		t.Fatalf("loadServeConfig: %v", err)
	}
	if cfg.Address() != "0.0.0.0:9999" {
		t.Errorf("Address = %q, want 0.0.0.0:9999", cfg.Address())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}

	cfg, err = loadServeConfig(serveOptions{configPath: path, port: 8080, host: "localhost"})
	if err != nil {
		t.Fatalf("loadServeConfig: %v", err)
	}
	if cfg.Address() != "localhost:8080" {
		t.Errorf("Address = %q, want localhost:8080", cfg.Address())
	}

	_, err = loadServeConfig(serveOptions{configPath: filepath.Join(dir, "missing.json")})
	if !stderrors.Is(err, errors.New(errors.CodeConfigNotFound)) {
		t.Errorf("err = %v, want E141", err)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"", "", false},
		{"debug", "json", false},
		{"WARN", "text", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		_, err := newLogger(io.Discard, tt.level, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("newLogger(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
		}
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q, want %q", out, version)
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		format   string
		wantJSON map[string]string
		wantText string
	}{
		{
			name:     "coded json",
			err:      errors.New(errors.CodeUnknownComponentName).WithDetail(`no app "nope"`),
			format:   "JSON",
			wantJSON: map[string]string{"code": "E142", "detail": `no app "nope"`},
		},
		{
			name:     "plain json",
			err:      stderrors.New("boom"),
			format:   "json",
			wantJSON: map[string]string{"category": "cli", "message": "boom"},
		},
		{
			name:     "text",
			err:      stderrors.New("boom"),
			format:   "",
			wantText: "ERROR:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err, tt.format)
			out := buf.String()

			if tt.wantJSON == nil {
				if !strings.Contains(out, tt.wantText) {
					t.Errorf("output = %q, want it to contain %q", out, tt.wantText)
				}
				return
			}
			var got map[string]string
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out)
			}
			for k, v := range tt.wantJSON {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
