package bonds

import (
	"errors"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// ErrNotFound is returned by views when the requested record does not exist.
var ErrNotFound = errors.New("bonds: record not found")

func (e *Engine) viewRecord(name string, addr crypto.Address) ([]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	account, err := e.state.AccountGet(addr)
	if err != nil {
		return nil, err
	}
	if account.IsEmpty() {
		return nil, ErrNotFound
	}
	if err := VerifyOwner(name, account, e.program()); err != nil {
		return nil, err
	}
	return account.Data, nil
}

// Config returns the stored configuration and its address.
func (e *Engine) Config() (*Config, crypto.Address, error) {
	addr, _, err := ConfigAddress(e.program())
	if err != nil {
		return nil, crypto.Address{}, err
	}
	data, err := e.viewRecord("config", addr)
	if err != nil {
		return nil, addr, err
	}
	cfg, err := DecodeConfig(data)
	return cfg, addr, err
}

// Owner returns wallet's owner record and its address.
func (e *Engine) Owner(wallet crypto.Address) (*OwnerAccount, crypto.Address, error) {
	addr, _, err := OwnerAddress(e.program(), wallet)
	if err != nil {
		return nil, crypto.Address{}, err
	}
	data, err := e.viewRecord("owner", addr)
	if err != nil {
		return nil, addr, err
	}
	owner, err := DecodeOwner(data)
	return owner, addr, err
}

// Position returns the position at index under wallet's owner record.
func (e *Engine) Position(wallet crypto.Address, index uint8) (*BondPosition, crypto.Address, error) {
	ownerAddr, _, err := OwnerAddress(e.program(), wallet)
	if err != nil {
		return nil, crypto.Address{}, err
	}
	addr, _, err := PositionAddress(e.program(), ownerAddr, index)
	if err != nil {
		return nil, crypto.Address{}, err
	}
	data, err := e.viewRecord("bond", addr)
	if err != nil {
		return nil, addr, err
	}
	pos, err := DecodePosition(data)
	return pos, addr, err
}

// ClaimPreview is what a claim submitted now would settle, before pool
// liquidity and auto-compounding are taken into account.
type ClaimPreview struct {
	Index       uint8   `json:"index"`
	Now         int64   `json:"now"`
	Accrual     Accrual `json:"accrual"`
	WouldClose  bool    `json:"wouldClose"`
	CanCompound bool    `json:"canCompound"`
	PoolBalance uint64  `json:"poolBalance"`
	PoolCovers  bool    `json:"poolCovers"`
}

// PreviewClaim computes the current accrual of a position without mutating
// state. Paused configurations still preview.
func (e *Engine) PreviewClaim(wallet crypto.Address, index uint8) (*ClaimPreview, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	cfg, _, err := e.Config()
	if err != nil {
		return nil, err
	}
	owner, _, err := e.Owner(wallet)
	if err != nil {
		return nil, err
	}
	pos, _, err := e.Position(wallet, index)
	if err != nil {
		return nil, err
	}
	if err := VerifyBondValid(pos, owner); err != nil {
		return nil, err
	}
	now := e.now()
	acc, err := Accrue(pos.LastClaimTime, now, cfg.DailyEmissionRate, cfg.ClaimPenaltyBps, cfg.MaxEmissionPerBond, pos.TotalClaimed)
	if err != nil {
		return nil, err
	}
	preview := &ClaimPreview{Index: index, Now: now, Accrual: acc}
	if claimed, err := checkedAdd(pos.TotalClaimed, acc.Reward); err == nil && claimed >= cfg.MaxEmissionPerBond {
		preview.WouldClose = true
	}
	count := owner.BondCount
	if preview.WouldClose {
		count--
	}
	if compound, err := e.params.CompoundAmount(); err == nil {
		preview.CanCompound = acc.Reward >= compound && count < cfg.MaxBondsPerWallet
	}
	pool, err := e.tokens.Account(cfg.RewardsPool)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		preview.PoolBalance = pool.Amount
	}
	preview.PoolCovers = preview.PoolBalance >= acc.Reward
	return preview, nil
}
