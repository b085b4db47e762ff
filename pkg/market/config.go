package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"stockchat-api/pkg/confkit"
)

// Config describes the set of market data providers available to the application.
type Config struct {
	Default   string                     `yaml:"default"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single market provider.
type ProviderConfig struct {
	Type string `yaml:"type"`

	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
}

// ProviderBuilder constructs a Provider from configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

var (
	providerRegistry   = make(map[string]ProviderBuilder)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers a market provider constructor under typeName.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[normaliseType(typeName)] = builder
}

// RegisteredTypes lists provider types known to the registry, sorted.
func RegisteredTypes() []string {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	out := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func lookupProviderBuilder(typeName string) (ProviderBuilder, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	builder, ok := providerRegistry[normaliseType(typeName)]
	return builder, ok
}

func normaliseType(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a single keyless Yahoo provider, used when no market
// section file is configured.
func DefaultConfig() *Config {
	return &Config{
		Default: "yahoo",
		Providers: map[string]*ProviderConfig{
			"yahoo": {Type: "yahoo", Timeout: 10 * time.Second},
		},
	}
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	for name, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	if c.Default == "" && len(c.Providers) == 1 {
		for name := range c.Providers {
			c.Default = name
		}
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.UserAgent = strings.TrimSpace(os.ExpandEnv(p.UserAgent))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
	p.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.HTTPTimeoutRaw))
}

func (p *ProviderConfig) parseDurations(name string) error {
	var err error
	if p.Timeout, err = parsePositive(name, "timeout", p.TimeoutRaw, p.Timeout); err != nil {
		return err
	}
	p.HTTPTimeout, err = parsePositive(name, "http_timeout", p.HTTPTimeoutRaw, p.HTTPTimeout)
	return err
}

func parsePositive(provider, field, raw string, current time.Duration) (time.Duration, error) {
	if raw == "" {
		return current, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("market provider %s: invalid %s %q: %w", provider, field, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("market provider %s: %s must be positive, got %s", provider, field, d)
	}
	return d, nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: providers cannot be empty")
	}
	if c.Default == "" {
		return fmt.Errorf("market config: default provider must be set when several are defined")
	}
	if _, ok := c.Providers[c.Default]; !ok {
		return fmt.Errorf("market config: default provider %q not defined", c.Default)
	}
	for name, provider := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("market config: provider name cannot be empty")
		}
		if err := provider.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p == nil {
		return fmt.Errorf("market config: provider %s is nil", name)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("market config: provider %s must specify type", name)
	}
	if _, ok := lookupProviderBuilder(p.Type); !ok {
		return fmt.Errorf("market config: provider %s has unsupported type %q", name, p.Type)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("market config: provider %s max_retries cannot be negative", name)
	}
	return nil
}

// BuildProviders instantiates market data providers according to configuration.
func (c *Config) BuildProviders() (map[string]Provider, error) {
	result := make(map[string]Provider, len(c.Providers))
	for name, providerCfg := range c.Providers {
		builder, ok := lookupProviderBuilder(providerCfg.Type)
		if !ok {
			return nil, fmt.Errorf("market provider %s: unsupported type %q", name, providerCfg.Type)
		}
		provider, err := builder(name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("market provider %s: %w", name, err)
		}
		result[name] = provider
	}
	return result, nil
}

// BuildDefault instantiates only the default provider.
func (c *Config) BuildDefault() (Provider, error) {
	providerCfg, ok := c.Providers[c.Default]
	if !ok {
		return nil, fmt.Errorf("market config: default provider %q not defined", c.Default)
	}
	builder, ok := lookupProviderBuilder(providerCfg.Type)
	if !ok {
		return nil, fmt.Errorf("market provider %s: unsupported type %q", c.Default, providerCfg.Type)
	}
	return builder(c.Default, providerCfg)
}
