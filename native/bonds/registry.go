package bonds

import (
	"fmt"

	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

// ValidateConfig rejects records that would break the ledger's invariants
// once stored.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return newError(CodeSerialization, "config")
	}
	var sum uint32
	for _, w := range cfg.DepositSplit {
		sum += uint32(w)
	}
	if sum != BasisPoints {
		return errorf(CodeSerialization, "config", "deposit split sums to %d, want %d", sum, BasisPoints)
	}
	if cfg.ClaimPenaltyBps > BasisPoints {
		return errorf(CodeSerialization, "config", "claim penalty %d exceeds %d bps", cfg.ClaimPenaltyBps, BasisPoints)
	}
	if cfg.MaxBondsPerWallet == 0 || cfg.MaxBondsPerWallet > MaxActiveBonds {
		return errorf(CodeSerialization, "config", "max bonds per wallet %d outside [1,%d]", cfg.MaxBondsPerWallet, MaxActiveBonds)
	}
	return nil
}

// InitializeConfig creates the configuration record and provisions the
// treasury, team and rewards-pool value accounts when they are missing.
func (e *Engine) InitializeConfig(op *InitializeConfig) error {
	if err := e.ready(); err != nil {
		return err
	}
	if op == nil {
		return ErrInvalidInstruction
	}
	if err := VerifySigner("authority", op.Authority); err != nil {
		return err
	}
	if err := VerifySigner("treasury", op.Treasury); err != nil {
		return err
	}
	if err := VerifySigner("team", op.Team); err != nil {
		return err
	}
	if err := VerifyWritable("config", op.Config); err != nil {
		return err
	}
	if _, err := VerifyDerivation("config", op.Config.Key, ConfigSeeds(), e.program()); err != nil {
		return err
	}
	if err := e.requireEmpty("config", op.Config.Key); err != nil {
		return err
	}

	mint := op.Mint.Key
	vaults := []struct {
		name   string
		holder crypto.Address
		addr   crypto.Address
	}{
		{"treasury vault", op.Treasury.Key, op.TreasuryVault.Key},
		{"team vault", op.Team.Key, op.TeamVault.Key},
		{"rewards pool", op.Config.Key, op.RewardsPool.Key},
	}
	for _, v := range vaults {
		expected, err := crypto.AssociatedAddress(v.holder, mint)
		if err != nil {
			return errorf(CodeInvalidTokenAccounts, v.name, "%v", err)
		}
		if err := VerifyEqual(v.name, v.addr, expected); err != nil {
			return err
		}
	}

	cfg := &Config{
		Authority:          op.Authority.Key,
		Treasury:           op.TreasuryVault.Key,
		Team:               op.TeamVault.Key,
		RewardsPool:        op.RewardsPool.Key,
		Mint:               mint,
		DailyEmissionRate:  e.params.DailyEmissionRate,
		MaxEmissionPerBond: e.params.MaxEmissionPerBond,
		MaxBondsPerWallet:  MaxActiveBonds,
		DepositSplit:       DefaultDepositSplit,
		ClaimPenaltyBps:    e.params.ClaimPenaltyBps,
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := e.storeConfig(op.Config.Key, cfg); err != nil {
		return err
	}
	for _, v := range vaults {
		if err := e.tokens.CreateAssociated(v.holder, mint, v.addr); err != nil {
			return fmt.Errorf("bonds: provision %s: %w", v.name, err)
		}
	}
	e.emit(events.BondConfigInitialized{
		Config:      op.Config.Key,
		Authority:   cfg.Authority,
		RewardsPool: cfg.RewardsPool,
		Treasury:    cfg.Treasury,
		Team:        cfg.Team,
		Mint:        cfg.Mint,
	})
	return nil
}

// ReplaceConfig overwrites the whole configuration record, pause flag
// included. Only the stored authority may do so.
func (e *Engine) ReplaceConfig(op *ReplaceConfig) error {
	if err := e.ready(); err != nil {
		return err
	}
	if op == nil {
		return ErrInvalidInstruction
	}
	if err := VerifySigner("authority", op.Authority); err != nil {
		return err
	}
	if err := VerifyWritable("config", op.Config); err != nil {
		return err
	}
	current, err := e.loadConfig(op.Config)
	if err != nil {
		return err
	}
	if err := VerifyEqual("authority", op.Authority.Key, current.Authority); err != nil {
		return err
	}
	next := op.NewConfig
	if err := ValidateConfig(&next); err != nil {
		return err
	}
	if err := e.storeConfig(op.Config.Key, &next); err != nil {
		return err
	}
	e.emit(events.BondConfigReplaced{
		Authority:          next.Authority,
		Paused:             next.Paused,
		DailyEmissionRate:  next.DailyEmissionRate,
		MaxEmissionPerBond: next.MaxEmissionPerBond,
		ClaimPenaltyBps:    uint64(next.ClaimPenaltyBps),
	})
	return nil
}
