package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultClaimFee is the network fee attached to the claim payout when
	// the configuration does not override it.
	DefaultClaimFee uint64 = 1000

	defaultDataDir = "./data"
)

// Config carries the operator-tunable knobs of the bounty module. The fee
// schedule and pause set are configuration rather than engine constants so
// deployments can match the economics of their host network.
type Config struct {
	DataDir   string   `toml:"DataDir"`
	ClaimFee  uint64   `toml:"ClaimFee"`
	RefundFee uint64   `toml:"RefundFee"`
	Paused    []string `toml:"Paused"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s contains unknown fields: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if c.Paused == nil {
		c.Paused = []string{}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	for _, module := range c.Paused {
		if strings.TrimSpace(module) == "" {
			return fmt.Errorf("config: Paused entries must not be empty")
		}
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  defaultDataDir,
		ClaimFee: DefaultClaimFee,
		Paused:   []string{},
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
