package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.NotEmpty(t, cfg.ProgramID)
	require.FileExists(t, path)

	key, err := crypto.LoadKeyFile(DefaultAuthorityKeyPath(path))
	require.NoError(t, err)
	require.Equal(t, cfg.Genesis.MintAuthority, key.Address().String())

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ProgramID, reloaded.ProgramID)
	require.Equal(t, cfg.Genesis.Mint, reloaded.Genesis.Mint)

	params, err := reloaded.Params()
	require.NoError(t, err)
	require.Equal(t, bonds.DefaultDailyEmissionRate, params.DailyEmissionRate)
	require.Equal(t, 20*bonds.DefaultBaseUnit, params.MaxEmissionPerBond)
}

func TestLoadParsesSettings(t *testing.T) {
	program := crypto.Address{1}
	authority := crypto.Address{2}
	mint := crypto.Address{3}
	holder := crypto.Address{4}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(`RPCAddress = "127.0.0.1:9100"
DataDir = "./data"
ProgramID = "%s"
LogFile = "bondd.log"
LogMaxSizeMB = 5
PausedModules = ["Bonds"]

[Economics]
DailyEmissionRate = 1000
ClaimPenaltyBps = 250

[Genesis]
MintAuthority = "%s"
Mint = "%s"

[[Genesis.Allocations]]
Owner = "%s"
Amount = 50000000000

[Quota]
MaxRequestsPerWindow = 3
WindowSeconds = 10

[RateLimit]
RequestsPerMinute = 30
Burst = 5
`, program, authority.Base58(), mint, holder)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9100", cfg.RPCAddress)
	require.Equal(t, 5, cfg.LogMaxSizeMB)
	require.Len(t, cfg.Genesis.Allocations, 1)
	require.Equal(t, uint64(50_000_000_000), cfg.Genesis.Allocations[0].Amount)
	require.Equal(t, bonds.DefaultDecimals, cfg.Genesis.Decimals)

	params, err := cfg.Params()
	require.NoError(t, err)
	require.Equal(t, program, params.ProgramID)
	require.Equal(t, uint64(1000), params.DailyEmissionRate)
	require.Equal(t, uint16(250), params.ClaimPenaltyBps)
	require.Equal(t, 20*bonds.DefaultBaseUnit, params.MaxEmissionPerBond)

	require.True(t, cfg.Pauses().IsPaused(bonds.ModuleName))
	quota := cfg.SubmissionQuota()
	require.Equal(t, uint32(3), quota.MaxRequestsPerWindow)
	require.Equal(t, uint64(2), quota.Window(25))
	require.Equal(t, RateLimit{RequestsPerMinute: 30, Burst: 5}, cfg.RateLimit)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"unknown field": `Bogus = 1`,
		"bad program":   `ProgramID = "nope"`,
		"rate limit":    fmt.Sprintf("ProgramID = %q\n[RateLimit]\nBurst = -1\n", crypto.Address{1}),
		"penalty":       fmt.Sprintf("ProgramID = %q\n[Economics]\nClaimPenaltyBps = 10001\n", crypto.Address{1}),
	}
	for name, contents := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
		_, err := Load(path)
		require.Error(t, err, name)
	}
}
