package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default target is the linux.org.ru front page", func(t *testing.T) {
		t.Parallel()
		if cfg.Target != "https://www.linux.org.ru/" {
			t.Errorf("expected Target to be 'https://www.linux.org.ru/', got '%s'", cfg.Target)
		}
	})

	t.Run("default ImplicitWait is 1 second", func(t *testing.T) {
		t.Parallel()
		if cfg.ImplicitWait != time.Second {
			t.Errorf("expected ImplicitWait to be 1s, got %v", cfg.ImplicitWait)
		}
	})

	t.Run("default ScrollTimeout is 3 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ScrollTimeout != 3*time.Second {
			t.Errorf("expected ScrollTimeout to be 3s, got %v", cfg.ScrollTimeout)
		}
	})

	t.Run("headless by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
	})

	t.Run("chrome session by default", func(t *testing.T) {
		t.Parallel()
		if cfg.Static {
			t.Error("expected Static to be false")
		}
	})

	t.Run("default expectations are loaded", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff(DefaultExpectations(), cfg.Expect); diff != "" {
			t.Errorf("expectations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("default config validates", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid config returns nil",
			mutate:  func(_ *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty target returns ErrInvalidURL",
			mutate:  func(c *Config) { c.Target = "" },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "relative target returns ErrInvalidURL",
			mutate:  func(c *Config) { c.Target = "/news" },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "ftp target returns ErrInvalidURL",
			mutate:  func(c *Config) { c.Target = "ftp://www.linux.org.ru/" },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "zero timeout returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero implicit wait is valid",
			mutate:  func(c *Config) { c.ImplicitWait = 0 },
			wantErr: nil,
		},
		{
			name:    "negative implicit wait returns ErrInvalidImplicitWait",
			mutate:  func(c *Config) { c.ImplicitWait = -time.Second },
			wantErr: ErrInvalidImplicitWait,
		},
		{
			name:    "zero scroll timeout returns ErrInvalidScrollTimeout",
			mutate:  func(c *Config) { c.ScrollTimeout = 0 },
			wantErr: ErrInvalidScrollTimeout,
		},
		{
			name:    "zero poll interval returns ErrInvalidScrollTimeout",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: ErrInvalidScrollTimeout,
		},
		{
			name:    "zero window width returns ErrInvalidWindowSize",
			mutate:  func(c *Config) { c.WindowWidth = 0 },
			wantErr: ErrInvalidWindowSize,
		},
		{
			name: "json and markdown both enabled returns ErrConflictingReportFormats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "known regions are valid",
			mutate:  func(c *Config) { c.Regions = []string{"header", "footer"} },
			wantErr: nil,
		},
		{
			name:    "host:port proxy is valid",
			mutate:  func(c *Config) { c.ProxyAddress = "127.0.0.1:1080" },
			wantErr: nil,
		},
		{
			name:    "bracketed ipv6 proxy is valid",
			mutate:  func(c *Config) { c.ProxyAddress = "[::1]:9050" },
			wantErr: nil,
		},
		{
			name:    "proxy without port returns ErrInvalidProxyAddress",
			mutate:  func(c *Config) { c.ProxyAddress = "localhost" },
			wantErr: ErrInvalidProxyAddress,
		},
		{
			name:    "proxy with port out of range returns ErrInvalidProxyAddress",
			mutate:  func(c *Config) { c.ProxyAddress = "localhost:70000" },
			wantErr: ErrInvalidProxyAddress,
		},
		{
			name:    "proxy with scheme returns ErrInvalidProxyAddress",
			mutate:  func(c *Config) { c.ProxyAddress = "socks5://localhost:1080" },
			wantErr: ErrInvalidProxyAddress,
		},
		{
			name:    "unknown region returns ErrUnknownRegion",
			mutate:  func(c *Config) { c.Regions = []string{"sidebar"} },
			wantErr: ErrUnknownRegion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestSiteRoot tests derivation of the logo link from the target.
func TestSiteRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   string
	}{
		{"https://www.linux.org.ru/", "https://www.linux.org.ru/"},
		{"https://www.linux.org.ru", "https://www.linux.org.ru/"},
		{"https://www.linux.org.ru/news/", "https://www.linux.org.ru/"},
		{"http://127.0.0.1:8080/index.html", "http://127.0.0.1:8080/"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			cfg.Target = tt.target
			if got := cfg.SiteRoot(); got != tt.want {
				t.Errorf("SiteRoot() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRegionEnabled tests the region filter.
func TestRegionEnabled(t *testing.T) {
	t.Parallel()

	t.Run("empty filter enables every region", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		for _, r := range Regions {
			if !cfg.RegionEnabled(r) {
				t.Errorf("expected region %q to be enabled", r)
			}
		}
	})

	t.Run("filter enables only named regions", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Regions = []string{RegionFooter}
		if cfg.RegionEnabled(RegionHeader) {
			t.Error("expected header to be disabled")
		}
		if !cfg.RegionEnabled(RegionFooter) {
			t.Error("expected footer to be enabled")
		}
	})
}

// TestExpectationsMerge tests overriding the compiled-in expectation set.
func TestExpectationsMerge(t *testing.T) {
	t.Parallel()

	t.Run("empty override keeps defaults", func(t *testing.T) {
		t.Parallel()
		got := DefaultExpectations().Merge(Expectations{})
		if diff := cmp.Diff(DefaultExpectations(), got); diff != "" {
			t.Errorf("unexpected change (-want +got):\n%s", diff)
		}
	})

	t.Run("lists are replaced", func(t *testing.T) {
		t.Parallel()
		got := DefaultExpectations().Merge(Expectations{
			Header: HeaderExpectations{Menu: []string{"News"}},
		})
		if diff := cmp.Diff([]string{"News"}, got.Header.Menu); diff != "" {
			t.Errorf("menu mismatch (-want +got):\n%s", diff)
		}
		if got.Header.LogoText != "LINUX.ORG.RU" {
			t.Errorf("expected default logo text, got %q", got.Header.LogoText)
		}
	})

	t.Run("counts are overridden", func(t *testing.T) {
		t.Parallel()
		got := DefaultExpectations().Merge(Expectations{
			Body: BodyExpectations{NewsCount: 7},
		})
		if got.Body.NewsCount != 7 {
			t.Errorf("expected NewsCount 7, got %d", got.Body.NewsCount)
		}
		if got.Body.BoxletCount != 5 {
			t.Errorf("expected default BoxletCount 5, got %d", got.Body.BoxletCount)
		}
	})
}

// TestLoadConfigFile tests reading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		content := `target: https://mirror.example.org/
browser:
  headless: false
  proxy: 127.0.0.1:1080
  implicitWait: 2s
  scrollTimeout: 5s
expect:
  header:
    logoText: MIRROR
  body:
    newsCount: 10
  footer:
    info:
      - hosted by example
`
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.Target != "https://mirror.example.org/" {
			t.Errorf("unexpected target %q", f.Target)
		}
		if f.Browser.Headless == nil || *f.Browser.Headless {
			t.Error("expected headless to be explicitly false")
		}
		if f.Browser.ImplicitWait == nil || *f.Browser.ImplicitWait != 2*time.Second {
			t.Errorf("expected implicitWait 2s, got %v", f.Browser.ImplicitWait)
		}
		if f.Expect.Body.NewsCount != 10 {
			t.Errorf("expected newsCount 10, got %d", f.Expect.Body.NewsCount)
		}
	})

	t.Run("explicit zero implicit wait is kept", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("browser:\n  implicitWait: 0s\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		cfg.Apply(f)

		if cfg.ImplicitWait != 0 {
			t.Errorf("expected implicit wait 0s, got %v", cfg.ImplicitWait)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected a zero implicit wait to be valid, got %v", err)
		}
	})

	t.Run("unset implicit wait keeps the default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("browser:\n  timeout: 10s\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		cfg.Apply(f)

		if cfg.ImplicitWait != DefaultImplicitWait {
			t.Errorf("expected implicit wait %v, got %v", DefaultImplicitWait, cfg.ImplicitWait)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("target: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestConfigApply tests applying a loaded file onto the defaults.
func TestConfigApply(t *testing.T) {
	t.Parallel()

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Apply(nil)
		if cfg.Target != DefaultTarget {
			t.Errorf("expected default target, got %q", cfg.Target)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		headless := false
		wait := 2 * time.Second
		cfg := NewConfig()
		cfg.Apply(&File{
			Target: "https://mirror.example.org/",
			Browser: BrowserFile{
				Headless:     &headless,
				Proxy:        "127.0.0.1:1080",
				ImplicitWait: &wait,
			},
			Expect: Expectations{
				Header: HeaderExpectations{LogoText: "MIRROR"},
			},
		})

		if cfg.Target != "https://mirror.example.org/" {
			t.Errorf("unexpected target %q", cfg.Target)
		}
		if cfg.Headless {
			t.Error("expected headless to be false")
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
		if cfg.ImplicitWait != 2*time.Second {
			t.Errorf("expected implicit wait 2s, got %v", cfg.ImplicitWait)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
		if cfg.Expect.Header.LogoText != "MIRROR" {
			t.Errorf("unexpected logo text %q", cfg.Expect.Header.LogoText)
		}
		if cfg.Expect.Body.NewsCount != 5 {
			t.Errorf("expected default news count, got %d", cfg.Expect.Body.NewsCount)
		}
	})
}

// TestFindConfigFile tests the config file search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "explicit.yaml")
		if err := os.WriteFile(path, []byte("target: https://example.org/\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir ends with app name", func(t *testing.T) {
		t.Parallel()
		if filepath.Base(XDGDataDir()) != AppName {
			t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
		}
	})

	t.Run("XDGConfigDir ends with app name", func(t *testing.T) {
		t.Parallel()
		if filepath.Base(XDGConfigDir()) != AppName {
			t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
		}
	})
}
