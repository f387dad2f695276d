package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/lorcheck/internal/config"
	"github.com/nao1215/lorcheck/internal/database"
	"github.com/nao1215/lorcheck/internal/model"
	"github.com/nao1215/lorcheck/internal/report"
)

// pageServer serves the check fixture. The page can be swapped while the
// server runs.
type pageServer struct {
	*httptest.Server
	page atomic.Value
}

func newPageServer(t *testing.T) *pageServer {
	t.Helper()

	data, err := os.ReadFile("../../internal/check/testdata/mainpage.html")
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	ps := &pageServer{}
	ps.page.Store(data)
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(ps.page.Load().([]byte))
	}))
	t.Cleanup(ps.Close)
	return ps
}

// replace swaps old for to in the served page.
func (ps *pageServer) replace(t *testing.T, old, to string) {
	t.Helper()
	page := string(ps.page.Load().([]byte))
	if !strings.Contains(page, old) {
		t.Fatalf("fixture does not contain %q", old)
	}
	ps.page.Store([]byte(strings.Replace(page, old, to, 1)))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticConfig(target, dbDir string) *config.Config {
	cfg := config.NewConfig()
	cfg.Target = target
	cfg.Static = true
	cfg.NoColor = true
	cfg.DBDir = dbDir
	cfg.SaveToDB = dbDir != ""
	return cfg
}

func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "static", shorthand: "s", defValue: "false"},
		{name: "headed", defValue: "false"},
		{name: "implicit-wait", shorthand: "w", defValue: "1s"},
		{name: "timeout", shorthand: "t", defValue: "30s"},
		{name: "scroll-timeout", defValue: "3s"},
		{name: "region", shorthand: "r", defValue: "[]"},
		{name: "proxy", shorthand: "x"},
		{name: "chrome-path"},
		{name: "config", shorthand: "c"},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "output", shorthand: "o"},
		{name: "no-color", defValue: "false"},
		{name: "no-save", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "lorcheck.yaml")
		if err := os.WriteFile(configPath, []byte(""), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{
			"-c", configPath,
			"--static",
			"--headed",
			"-w", "2s",
			"-t", "10s",
			"--scroll-timeout", "5s",
			"-r", "header", "-r", "footer",
			"-x", "127.0.0.1:1080",
			"-j",
			"-o", "out.json",
			"--no-color",
			"--no-save",
		}); err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://mirror.example.org/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Target != "https://mirror.example.org/" {
			t.Errorf("expected target from argument, got %s", cfg.Target)
		}
		if !cfg.Static || cfg.Headless {
			t.Errorf("expected static and headed, got static=%v headless=%v", cfg.Static, cfg.Headless)
		}
		if cfg.ImplicitWait != 2*time.Second || cfg.Timeout != 10*time.Second || cfg.ScrollTimeout != 5*time.Second {
			t.Errorf("unexpected durations: %v %v %v", cfg.ImplicitWait, cfg.Timeout, cfg.ScrollTimeout)
		}
		if len(cfg.Regions) != 2 || cfg.Regions[0] != "header" || cfg.Regions[1] != "footer" {
			t.Errorf("expected [header footer], got %v", cfg.Regions)
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("expected proxy, got %q", cfg.ProxyAddress)
		}
		if !cfg.JSONReport || cfg.ReportFile != "out.json" || !cfg.NoColor || cfg.SaveToDB {
			t.Errorf("unexpected report settings: %+v", cfg)
		}
	})

	t.Run("config file values survive unset flags", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lorcheck")
		content := `
target: "https://www.linux.org.ru/news/"
browser:
  headless: false
  implicitWait: 4s
  proxy: "127.0.0.1:9050"
expect:
  body:
    newsCount: 10
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "-t", "45s"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Target != "https://www.linux.org.ru/news/" {
			t.Errorf("expected target from file, got %s", cfg.Target)
		}
		if cfg.Headless {
			t.Error("expected headless=false from file")
		}
		if cfg.ImplicitWait != 4*time.Second {
			t.Errorf("expected implicit wait 4s from file, got %v", cfg.ImplicitWait)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected timeout 45s from flag, got %v", cfg.Timeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("expected proxy from file, got %q", cfg.ProxyAddress)
		}
		if cfg.Expect.Body.NewsCount != 10 || cfg.Expect.Body.BoxletCount != 5 {
			t.Errorf("expected merged expectations, got %+v", cfg.Expect.Body)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatal(err)
		}

		_, err := buildConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestRunRunCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "conflicting formats", args: []string{"--no-save", "-j", "-m"}, want: config.ErrConflictingReportFormats},
		{name: "unknown region", args: []string{"--no-save", "-r", "sidebar"}, want: config.ErrUnknownRegion},
		{name: "invalid target", args: []string{"--no-save", "ftp://www.linux.org.ru/"}, want: config.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRunCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	setupLogger(&buf, false, true).Warn("proxy", "address", "socks5://me:pw@127.0.0.1:1080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %v: %s", err, buf.String())
	}
	if strings.Contains(buf.String(), "me:pw") {
		t.Errorf("expected credentials to be masked, got %s", buf.String())
	}

	buf.Reset()
	setupLogger(&buf, false, false).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be dropped without verbose, got %s", buf.String())
	}
}

func TestRunChecks(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	dbDir := t.TempDir()
	target := server.URL + "/"

	var out bytes.Buffer
	if err := runChecks(context.Background(), staticConfig(target, dbDir), &out, discardLogger()); err != nil {
		t.Fatalf("expected conforming page to pass, got %v", err)
	}
	if !strings.Contains(out.String(), "LORCHECK REPORT") {
		t.Errorf("expected text report, got %s", out.String())
	}

	server.replace(t, `<a href="/">LINUX.ORG.RU</a>`, `<a href="/">LOR</a>`)

	out.Reset()
	err := runChecks(context.Background(), staticConfig(target, dbDir), &out, discardLogger())
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("expected errChecksFailed, got %v", err)
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	runs, err := db.GetRunHistory(context.Background(), target)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 stored runs, got %d", len(runs))
	}
	if runs[0].Passed() || !runs[1].Passed() {
		t.Errorf("expected latest run failed and previous passed, got %v and %v", runs[0].Passed(), runs[1].Passed())
	}
}

func TestRunChecks_Unreachable(t *testing.T) {
	t.Parallel()

	cfg := staticConfig("http://127.0.0.1:1/", "")
	cfg.Timeout = 2 * time.Second

	var out bytes.Buffer
	err := runChecks(context.Background(), cfg, &out, discardLogger())
	if err == nil {
		t.Fatal("expected an error for an unreachable target")
	}
	if !strings.Contains(out.String(), "LORCHECK REPORT") {
		t.Errorf("expected a report even when navigation fails, got %s", out.String())
	}
}

func TestOutputReport(t *testing.T) {
	t.Parallel()

	runReport := model.NewRunReport(config.DefaultTarget, "static")
	runReport.AddRegion(model.RegionResult{
		Name: config.RegionHeader,
		Root: "hd",
		Checks: []model.CheckResult{
			{Region: config.RegionHeader, Name: "hd_structure", Status: model.StatusPassed},
		},
	})
	runReport.Finalize()

	tests := []struct {
		name  string
		setup func(cfg *config.Config)
		want  string
	}{
		{name: "text", setup: func(*config.Config) {}, want: "LORCHECK REPORT"},
		{name: "json", setup: func(cfg *config.Config) { cfg.JSONReport = true }, want: `"version"`},
		{name: "markdown", setup: func(cfg *config.Config) { cfg.MarkdownReport = true }, want: "# lorcheck Report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.NoColor = true
			tt.setup(cfg)

			var buf bytes.Buffer
			if err := outputReport(cfg, runReport, &buf); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got %s", tt.want, buf.String())
			}
		})
	}

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.json")

		var buf bytes.Buffer
		if err := outputReport(cfg, runReport, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "LORCHECK REPORT") {
			t.Errorf("expected the text report on stdout, got %s", buf.String())
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file, got %v", err)
		}
		var decoded report.JSONReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if !decoded.Passed || decoded.Report.Target != config.DefaultTarget {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})
}

func TestSaveRunReport_NilDB(t *testing.T) {
	t.Parallel()

	if err := saveRunReport(context.Background(), nil, model.NewRunReport(config.DefaultTarget, "static"), discardLogger()); err != nil {
		t.Errorf("expected nil for nil database, got %v", err)
	}
}
