package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults used when neither the config file nor the environment set a
// value.
const (
	DefaultEncoding   = "utf-8"
	DefaultOutputDir  = "./"
	DefaultHistoryDSN = "yuquemd.db"
	DefaultAPIAddr    = "localhost:8082"
	DefaultUserAgent  = "Mozilla/5.0 (compatible; yuquemd/1.0)"
)

// Config is the effective configuration after merging defaults, the config
// file and environment variables.
type Config struct {
	OutputDir  string
	Encoding   string
	Cookies    string
	Proxies    map[string]string
	UserAgent  string
	HistoryDSN string
	APIAddr    string
	Workers    int
	Preview    bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:  DefaultOutputDir,
		Encoding:   DefaultEncoding,
		Proxies:    map[string]string{},
		UserAgent:  DefaultUserAgent,
		HistoryDSN: DefaultHistoryDSN,
		APIAddr:    DefaultAPIAddr,
	}
}

// Load builds the effective configuration: defaults, then the config file
// (if present), then YUQUEMD_* environment variables.
func Load() (*Config, error) {
	file, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Merge(file)
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge copies every non-empty field of file over c. A nil file is a no-op.
func (c *Config) Merge(file *FileConfig) {
	if file == nil {
		return
	}
	if file.OutputDir != "" {
		c.OutputDir = file.OutputDir
	}
	if file.Encoding != "" {
		c.Encoding = file.Encoding
	}
	if file.Cookies != "" {
		c.Cookies = file.Cookies
	}
	for scheme, proxy := range file.Proxies {
		c.Proxies[scheme] = proxy
	}
	if file.UserAgent != "" {
		c.UserAgent = file.UserAgent
	}
	if file.HistoryDSN != "" {
		c.HistoryDSN = file.HistoryDSN
	}
	if file.APIAddr != "" {
		c.APIAddr = file.APIAddr
	}
	if file.Workers > 0 {
		c.Workers = file.Workers
	}
	if file.Preview {
		c.Preview = true
	}
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("YUQUEMD_COOKIES"); v != "" {
		c.Cookies = v
	}
	if v := getenv("YUQUEMD_ENCODING"); v != "" {
		c.Encoding = v
	}
	if v := getenv("YUQUEMD_HISTORY_DSN"); v != "" {
		c.HistoryDSN = v
	}
	if v := getenv("YUQUEMD_API_ADDR"); v != "" {
		c.APIAddr = v
	}
	if v := getenv("YUQUEMD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid YUQUEMD_WORKERS: %q", v)
		}
		c.Workers = n
	}
	if v := getenv("YUQUEMD_PROXIES"); v != "" {
		proxies, err := ParseProxies(v)
		if err != nil {
			return err
		}
		for scheme, proxy := range proxies {
			c.Proxies[scheme] = proxy
		}
	}
	return nil
}

// ParseProxies parses the "http=proxy1,https=proxy2" proxy syntax into a
// scheme -> proxy URL map.
func ParseProxies(s string) (map[string]string, error) {
	proxies := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return proxies, nil
	}

	for _, part := range strings.Split(s, ",") {
		scheme, proxy, ok := strings.Cut(part, "=")
		scheme = strings.TrimSpace(scheme)
		proxy = strings.TrimSpace(proxy)
		if !ok || scheme == "" || proxy == "" || strings.Contains(proxy, "=") {
			return nil, fmt.Errorf(`invalid proxies %q: expected "http=proxy1,https=proxy2"`, s)
		}
		proxies[scheme] = proxy
	}
	return proxies, nil
}
