package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/WillShirley13/testudo-bonds/core/genesis"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
	"github.com/WillShirley13/testudo-bonds/native/common"
)

type Config struct {
	RPCAddress    string       `toml:"RPCAddress"`
	DataDir       string       `toml:"DataDir"`
	ProgramID     string       `toml:"ProgramID"`
	Environment   string       `toml:"Environment"`
	LogFile       string       `toml:"LogFile"`
	LogMaxSizeMB  int          `toml:"LogMaxSizeMB"`
	PausedModules []string     `toml:"PausedModules"`
	Economics     Economics    `toml:"Economics"`
	Genesis       genesis.Spec `toml:"Genesis"`
	Quota         Quota        `toml:"Quota"`
	RateLimit     RateLimit    `toml:"RateLimit"`
}

// Load loads the configuration from the given path. A missing file is created
// with defaults, a fresh program identity and a fresh mint authority key.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0])
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./testudo-data"
	}
	if cfg.Genesis.Decimals == 0 {
		cfg.Genesis.Decimals = bonds.DefaultDecimals
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
}

// Params converts the economics section into engine parameters.
func (c *Config) Params() (bonds.Params, error) {
	program, err := crypto.ParseAddress(c.ProgramID)
	if err != nil {
		return bonds.Params{}, fmt.Errorf("config: program id: %w", err)
	}
	params := bonds.DefaultParams(program)
	if c.Economics.DailyEmissionRate != 0 {
		params.DailyEmissionRate = c.Economics.DailyEmissionRate
	}
	if c.Economics.MaxEmissionPerBond != 0 {
		params.MaxEmissionPerBond = c.Economics.MaxEmissionPerBond
	}
	if c.Economics.ClaimPenaltyBps != 0 {
		params.ClaimPenaltyBps = c.Economics.ClaimPenaltyBps
	}
	if c.Genesis.Decimals != 0 {
		params.Decimals = c.Genesis.Decimals
	}
	if err := params.Validate(); err != nil {
		return bonds.Params{}, err
	}
	return params, nil
}

// Pauses returns the operator pause set.
func (c *Config) Pauses() common.StaticPauses {
	return common.NewStaticPauses(c.PausedModules...)
}

// SubmissionQuota returns the per-signer submission limit.
func (c *Config) SubmissionQuota() common.Quota {
	return common.Quota{
		MaxRequestsPerWindow: c.Quota.MaxRequestsPerWindow,
		WindowSeconds:        c.Quota.WindowSeconds,
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	program, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	authority, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	mint, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	if err := crypto.SaveKeyFile(DefaultAuthorityKeyPath(path), authority); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProgramID: program.Address().String(),
		Genesis: genesis.Spec{
			MintAuthority: authority.Address().String(),
			Mint:          mint.Address().String(),
			Allocations:   []genesis.AllocationSpec{},
		},
		Quota:     Quota{MaxRequestsPerWindow: 120, WindowSeconds: 60},
		RateLimit: RateLimit{RequestsPerMinute: 600, Burst: 20},
	}
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// DefaultAuthorityKeyPath is where createDefault stores the mint authority
// key for a configuration file at configPath.
func DefaultAuthorityKeyPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "mint-authority.json")
}
