package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"totemic/crypto"
)

// Defaults applied when the config file omits a field.
const (
	DefaultListenAddress = "0.0.0.0:8645"
	DefaultDataDir       = "./totemic-data"
	DefaultEnvironment   = "development"
	DefaultVestingFile   = "./vesting.toml"
)

// Config is the top-level daemon configuration, decoded from TOML.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	Environment   string `toml:"Environment"`
	LogFile       string `toml:"LogFile"`
	VestingFile   string `toml:"VestingFile"`
	RPCAuthToken  string `toml:"RPCAuthToken"`

	Registry    RegistryConfig    `toml:"registry"`
	Merit       MeritConfig       `toml:"merit"`
	Boost       BoostConfig       `toml:"boost"`
	Coordinator CoordinatorConfig `toml:"coordinator"`
}

// RegistryConfig names the ecosystem collaborators. Addresses are bech32 with
// the "totem" prefix.
type RegistryConfig struct {
	Token       string `toml:"Token"`
	Treasury    string `toml:"Treasury"`
	Factory     string `toml:"Factory"`
	Coordinator string `toml:"Coordinator"`
	Admin       string `toml:"Admin"`
	BoostSigner string `toml:"BoostSigner"`
}

// MeritConfig overrides the merit ledger defaults. Zero values fall back to
// the engine defaults.
type MeritConfig struct {
	PeriodSeconds       uint64 `toml:"PeriodSeconds"`
	PeriodsPerYear      uint64 `toml:"PeriodsPerYear"`
	MythumWindowSeconds uint64 `toml:"MythumWindowSeconds"`
	MythumMultiplierBps uint64 `toml:"MythumMultiplierBps"`
	BoostFeeWei         string `toml:"BoostFeeWei"`
	BoostPoints         uint64 `toml:"BoostPoints"`
}

// BoostConfig overrides the boost engine defaults.
type BoostConfig struct {
	BoostIntervalSeconds  uint64   `toml:"BoostIntervalSeconds"`
	BoostWindowSeconds    uint64   `toml:"BoostWindowSeconds"`
	SignatureValiditySecs uint64   `toml:"SignatureValiditySeconds"`
	BasePoints            uint64   `toml:"BasePoints"`
	PremiumPriceWei       string   `toml:"PremiumPriceWei"`
	Milestones            []uint64 `toml:"Milestones"`
	MilestoneURIs         []string `toml:"MilestoneURIs"`
}

// CoordinatorConfig selects the randomness coordinator. Mode "local" runs the
// in-process dev oracle; any other value expects fulfillments to arrive over
// RPC from the configured coordinator address.
type CoordinatorConfig struct {
	Mode           string `toml:"Mode"`
	MinDelayMillis uint64 `toml:"MinDelayMillis"`
	MaxDelayMillis uint64 `toml:"MaxDelayMillis"`
}

// Load reads the configuration from the given path, applying defaults for
// omitted fields. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: DefaultListenAddress,
		DataDir:       DefaultDataDir,
		Environment:   DefaultEnvironment,
		VestingFile:   DefaultVestingFile,
		Coordinator:   CoordinatorConfig{Mode: "local", MinDelayMillis: 50, MaxDelayMillis: 500},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the address fields decode and the required collaborators
// are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	required := map[string]string{
		"registry.Treasury": c.Registry.Treasury,
		"registry.Admin":    c.Registry.Admin,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s must be set", field)
		}
	}
	optional := map[string]string{
		"registry.Token":       c.Registry.Token,
		"registry.Treasury":    c.Registry.Treasury,
		"registry.Factory":     c.Registry.Factory,
		"registry.Coordinator": c.Registry.Coordinator,
		"registry.Admin":       c.Registry.Admin,
		"registry.BoostSigner": c.Registry.BoostSigner,
	}
	for field, value := range optional {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := crypto.DecodeAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	return nil
}

// Address decodes a bech32 address field into its raw 20 bytes. Empty fields
// return the zero address.
func Address(field string) ([20]byte, error) {
	if strings.TrimSpace(field) == "" {
		return [20]byte{}, nil
	}
	addr, err := crypto.DecodeAddress(field)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}
