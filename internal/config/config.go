package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultOutputFile is used when the config does not name an output file.
	DefaultOutputFile = "proxy_probe_results.csv"

	// DefaultTimeoutSeconds applies to accounts without their own timeout_seconds.
	DefaultTimeoutSeconds = 10.0

	// DefaultUserAgent is sent when an account does not set user_agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/121.0.0.0 Safari/537.36"

	// DefaultLogDir is where the structured run log goes unless overridden.
	DefaultLogDir = "logs"
)

// ProxyMap maps a URL scheme ("http", "https") to the proxy URL that should
// carry requests of that scheme. A nil map means "connect directly".
type ProxyMap map[string]string

// UnmarshalYAML tolerates non-mapping values (strings, numbers, null) by
// decoding them to nil instead of failing. The config format is permissive:
// a malformed proxy entry means "no proxy", not a fatal parse error.
func (p *ProxyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		*p = nil
		return nil
	}
	m := map[string]string{}
	if err := value.Decode(&m); err != nil {
		*p = nil
		return nil
	}
	*p = m
	return nil
}

// Account is one logical identity to probe, bound to an optional primary and
// backup proxy. Zero values fall back to run-wide defaults at probe time.
type Account struct {
	ID             string   `yaml:"id"`
	UserAgent      string   `yaml:"user_agent"`
	TimeoutSeconds float64  `yaml:"timeout_seconds"`
	Proxy          ProxyMap `yaml:"proxy"`
	BackupProxy    ProxyMap `yaml:"backup_proxy"`
}

// CheckEntry is a raw check as written in the config file, before validation.
type CheckEntry struct {
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	ExpectJSON *bool  `yaml:"expect_json"`
}

// Check is a validated probe target.
type Check struct {
	Name       string
	URL        string
	ExpectJSON bool
}

type Config struct {
	Accounts              []Account    `yaml:"accounts"`
	Checks                []CheckEntry `yaml:"checks"`
	OutputFile            string       `yaml:"output_file"`
	DefaultTimeoutSeconds float64      `yaml:"default_timeout_seconds"`
	LogDir                string       `yaml:"log_dir"`
}

// Load reads and parses the YAML config at path. A missing file is returned
// as-is so callers can match it with errors.Is(err, fs.ErrNotExist). An empty
// or null document yields a Config with defaults only.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}
	if cfg.DefaultTimeoutSeconds <= 0 {
		cfg.DefaultTimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	return cfg, nil
}

// BuildChecks validates the configured checks, preserving their order and
// dropping entries whose name or url is empty after trimming. When nothing
// valid remains the built-in catalog is substituted so the tool works with
// zero configuration.
func BuildChecks(cfg Config) []Check {
	checks := make([]Check, 0, len(cfg.Checks))
	for _, entry := range cfg.Checks {
		name := strings.TrimSpace(entry.Name)
		url := strings.TrimSpace(entry.URL)
		if name == "" || url == "" {
			continue
		}
		expectJSON := true
		if entry.ExpectJSON != nil {
			expectJSON = *entry.ExpectJSON
		}
		checks = append(checks, Check{Name: name, URL: url, ExpectJSON: expectJSON})
	}
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return checks
}

// DefaultChecks is the built-in catalog used when the config defines none.
func DefaultChecks() []Check {
	return []Check{
		{Name: "ipify", URL: "https://api.ipify.org?format=json", ExpectJSON: true},
		{Name: "ifconfig", URL: "https://ifconfig.co/json", ExpectJSON: true},
		{Name: "httpbin_headers", URL: "https://httpbin.org/headers", ExpectJSON: true},
	}
}

// ResolveOutputPath picks the CSV destination: an explicit override wins,
// otherwise the config's output_file resolved relative to the config file's
// directory.
func ResolveOutputPath(configPath string, cfg Config, override string) string {
	if override != "" {
		if abs, err := filepath.Abs(override); err == nil {
			return abs
		}
		return override
	}
	out := cfg.OutputFile
	if out == "" {
		out = DefaultOutputFile
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(filepath.Dir(configPath), out)
}
