package price

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"chainprice/pkg/confkit"
)

// Config describes the set of price sources available to the application and
// which named source serves each lookup role.
type Config struct {
	// Role assignments refer to keys of Sources.
	Contract string `yaml:"contract"`
	Swap     string `yaml:"swap"`
	Spot     string `yaml:"spot"`

	Sources map[string]*SourceConfig `yaml:"sources"`
}

// SourceConfig represents configuration for a single price source.
type SourceConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	BackoffRaw     string        `yaml:"backoff"`
	Backoff        time.Duration `yaml:"-"`
	// MaxRetries bounds rate-limit retries. Zero keeps retrying until the
	// context is cancelled, matching the historical behavior.
	MaxRetries int `yaml:"max_retries"`

	// Versions lists indexed datasets tried in declared order, newest first.
	// Only meaningful for subgraph-backed sources.
	Versions []VersionConfig `yaml:"versions"`
}

// VersionConfig names one dataset version of a versioned source.
type VersionConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SourceBuilder constructs a price source from configuration. The returned
// value implements one or more of the provider interfaces.
type SourceBuilder func(name string, cfg *SourceConfig) (any, error)

var (
	sourceRegistry   = make(map[string]SourceBuilder)
	sourceRegistryMu sync.RWMutex
)

// RegisterSource registers a price source constructor.
func RegisterSource(typeName string, builder SourceBuilder) {
	sourceRegistryMu.Lock()
	defer sourceRegistryMu.Unlock()
	sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupSourceBuilder(typeName string) (SourceBuilder, bool) {
	sourceRegistryMu.RLock()
	defer sourceRegistryMu.RUnlock()
	builder, ok := sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads price source configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read price config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal price config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Sources == nil {
		c.Sources = make(map[string]*SourceConfig)
	}
	for name, source := range c.Sources {
		if source == nil {
			source = &SourceConfig{}
			c.Sources[name] = source
		}
		source.expandEnv()
		if err := source.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceConfig) expandEnv() {
	s.Type = strings.TrimSpace(os.ExpandEnv(s.Type))
	s.BaseURL = strings.TrimSpace(os.ExpandEnv(s.BaseURL))
	s.APIKey = strings.TrimSpace(os.ExpandEnv(s.APIKey))
	s.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.TimeoutRaw))
	s.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.HTTPTimeoutRaw))
	s.BackoffRaw = strings.TrimSpace(os.ExpandEnv(s.BackoffRaw))
	for i := range s.Versions {
		s.Versions[i].Name = strings.TrimSpace(os.ExpandEnv(s.Versions[i].Name))
		s.Versions[i].URL = strings.TrimSpace(os.ExpandEnv(s.Versions[i].URL))
	}
}

func (s *SourceConfig) parseDurations(name string) error {
	parse := func(field, raw string) (time.Duration, error) {
		if raw == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("price source %s: invalid %s %q: %w", name, field, raw, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("price source %s: %s must be positive, got %s", name, field, d)
		}
		return d, nil
	}

	var err error
	if s.Timeout, err = parse("timeout", s.TimeoutRaw); err != nil {
		return err
	}
	if s.HTTPTimeout, err = parse("http_timeout", s.HTTPTimeoutRaw); err != nil {
		return err
	}
	if s.Backoff, err = parse("backoff", s.BackoffRaw); err != nil {
		return err
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("price config: sources cannot be empty")
	}
	for _, role := range []struct {
		label string
		name  string
	}{
		{"contract", c.Contract},
		{"swap", c.Swap},
		{"spot", c.Spot},
	} {
		if role.name == "" {
			continue
		}
		if _, ok := c.Sources[role.name]; !ok {
			return fmt.Errorf("price config: %s source %q not defined", role.label, role.name)
		}
	}
	for name, source := range c.Sources {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("price config: source name cannot be empty")
		}
		if err := source.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceConfig) validate(name string) error {
	if s == nil {
		return fmt.Errorf("price config: source %s is nil", name)
	}
	if strings.TrimSpace(s.Type) == "" {
		return fmt.Errorf("price config: source %s must specify type", name)
	}
	if _, ok := lookupSourceBuilder(s.Type); !ok {
		return fmt.Errorf("price config: source %s has unsupported type %q", name, s.Type)
	}
	for i, version := range s.Versions {
		if strings.TrimSpace(version.Name) == "" || strings.TrimSpace(version.URL) == "" {
			return fmt.Errorf("price config: source %s version %d needs both name and url", name, i)
		}
	}
	return nil
}

// BuildSources instantiates every configured source.
func (c *Config) BuildSources() (map[string]any, error) {
	result := make(map[string]any, len(c.Sources))
	for name, sourceCfg := range c.Sources {
		builder, ok := lookupSourceBuilder(sourceCfg.Type)
		if !ok {
			return nil, fmt.Errorf("price source %s: unsupported type %q", name, sourceCfg.Type)
		}
		source, err := builder(name, sourceCfg)
		if err != nil {
			return nil, fmt.Errorf("price source %s: %w", name, err)
		}
		result[name] = source
	}
	return result, nil
}

// BuildFacade instantiates the configured sources and wires them into a
// Facade according to the role assignments.
func (c *Config) BuildFacade(extra ...FacadeOption) (*Facade, error) {
	sources, err := c.BuildSources()
	if err != nil {
		return nil, err
	}

	opts := make([]FacadeOption, 0, len(extra)+3)
	if c.Contract != "" {
		provider, ok := sources[c.Contract].(ContractPriceProvider)
		if !ok {
			return nil, fmt.Errorf("price config: source %q cannot resolve contract prices", c.Contract)
		}
		opts = append(opts, WithContractProvider(provider))
	}
	if c.Swap != "" {
		provider, ok := sources[c.Swap].(TransactionValueProvider)
		if !ok {
			return nil, fmt.Errorf("price config: source %q cannot resolve transaction values", c.Swap)
		}
		opts = append(opts, WithTransactionProvider(provider))
	}
	if c.Spot != "" {
		provider, ok := sources[c.Spot].(SpotPriceProvider)
		if !ok {
			return nil, fmt.Errorf("price config: source %q cannot resolve spot prices", c.Spot)
		}
		opts = append(opts, WithSpotProvider(provider))
	}
	opts = append(opts, extra...)
	return NewFacade(opts...), nil
}
