package editor

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"slotforge/style"
)

// Config holds all editor configuration.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	Debounce  time.Duration   `yaml:"debounce"`
	Denylist  []string        `yaml:"denylist"`
	Translate TranslateConfig `yaml:"translate"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// TranslateConfig points the editor at the external translation service.
// An empty BaseURL disables translation bindings entirely.
type TranslateConfig struct {
	BaseURL       string   `yaml:"base_url"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

// HTTPConfig controls the REST surface.
type HTTPConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "slotforge.db"
	}
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
	if len(c.Denylist) == 0 {
		c.Denylist = style.DefaultDenyPatterns
	}
	if c.Translate.DefaultLocale == "" {
		c.Translate.DefaultLocale = "en"
	}
	if len(c.Translate.Locales) == 0 {
		c.Translate.Locales = []string{"en"}
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 256 * 1024
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
