package config

// Economics overrides the defaults a fresh configuration record is
// initialised with. Zero values keep the built-in defaults.
type Economics struct {
	DailyEmissionRate  uint64 `toml:"DailyEmissionRate"`
	MaxEmissionPerBond uint64 `toml:"MaxEmissionPerBond"`
	ClaimPenaltyBps    uint16 `toml:"ClaimPenaltyBps"`
}

// Quota bounds how many transactions one signer may submit per window. A zero
// MaxRequestsPerWindow disables the limit.
type Quota struct {
	MaxRequestsPerWindow uint32 `toml:"MaxRequestsPerWindow"`
	WindowSeconds        uint32 `toml:"WindowSeconds"`
}

// RateLimit bounds how fast one client address may submit transactions.
type RateLimit struct {
	RequestsPerMinute float64 `toml:"RequestsPerMinute"`
	Burst             int     `toml:"Burst"`
}
