package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".lorcheck"

// xdgConfigFile is the file name looked up under XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .lorcheck configuration file.
type File struct {
	// Target overrides the page under test.
	Target string `yaml:"target,omitempty"`

	// Browser overrides session settings.
	Browser BrowserFile `yaml:"browser,omitempty"`

	// Expect overrides parts of the expectation set.
	Expect Expectations `yaml:"expect,omitempty"`
}

// BrowserFile holds the session settings that may be set from the file.
// Pointers distinguish "unset" from an explicit false or zero.
type BrowserFile struct {
	Headless      *bool         `yaml:"headless,omitempty"`
	ChromePath    string        `yaml:"chromePath,omitempty"`
	Proxy         string        `yaml:"proxy,omitempty"`
	UserAgent     string        `yaml:"userAgent,omitempty"`
	ImplicitWait  *time.Duration `yaml:"implicitWait,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	ScrollTimeout time.Duration `yaml:"scrollTimeout,omitempty"`
	WindowWidth   int           `yaml:"windowWidth,omitempty"`
	WindowHeight  int           `yaml:"windowHeight,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .lorcheck in the current directory
// 3. Look for .lorcheck in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), xdgConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// Apply copies every value set in the file onto the configuration.
// CLI flags are applied afterwards and win over the file.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}

	if f.Target != "" {
		c.Target = f.Target
	}

	b := f.Browser
	if b.Headless != nil {
		c.Headless = *b.Headless
	}
	if b.ChromePath != "" {
		c.ChromePath = b.ChromePath
	}
	if b.Proxy != "" {
		c.ProxyAddress = b.Proxy
	}
	if b.UserAgent != "" {
		c.UserAgent = b.UserAgent
	}
	if b.ImplicitWait != nil {
		c.ImplicitWait = *b.ImplicitWait
	}
	if b.Timeout > 0 {
		c.Timeout = b.Timeout
	}
	if b.ScrollTimeout > 0 {
		c.ScrollTimeout = b.ScrollTimeout
	}
	if b.WindowWidth > 0 {
		c.WindowWidth = b.WindowWidth
	}
	if b.WindowHeight > 0 {
		c.WindowHeight = b.WindowHeight
	}

	c.Expect = c.Expect.Merge(f.Expect)
}
