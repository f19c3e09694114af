package bonds

import (
	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

// OpenOwner creates the owner record of the signing wallet.
func (e *Engine) OpenOwner(op *OpenOwner) error {
	if err := e.ready(); err != nil {
		return err
	}
	if op == nil {
		return ErrInvalidInstruction
	}
	if err := VerifySigner("wallet", op.Wallet); err != nil {
		return err
	}
	if err := VerifyWritable("owner", op.Owner); err != nil {
		return err
	}
	if _, err := VerifyDerivation("owner", op.Owner.Key, OwnerSeeds(op.Wallet.Key), e.program()); err != nil {
		return err
	}
	if err := e.requireEmpty("owner", op.Owner.Key); err != nil {
		return err
	}
	owner := NewOwnerAccount(op.Wallet.Key)
	if err := e.storeOwner(op.Owner.Key, &owner); err != nil {
		return err
	}
	e.emit(events.BondOwnerOpened{Wallet: op.Wallet.Key, Owner: op.Owner.Key})
	return nil
}

// OpenBond takes the fixed deposit from the wallet, splits it between the
// rewards pool, treasury and team, and opens a position at the owner's next
// index. The new index is returned.
func (e *Engine) OpenBond(op *OpenBond) (uint8, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if op == nil {
		return 0, ErrInvalidInstruction
	}
	cfg, err := e.loadConfig(op.Config)
	if err != nil {
		return 0, err
	}
	if err := e.guardPaused(cfg); err != nil {
		return 0, err
	}
	wallet := op.Wallet.Key
	if err := VerifySigner("wallet", op.Wallet); err != nil {
		return 0, err
	}
	owner, err := e.loadOwner(op.Owner, wallet)
	if err != nil {
		return 0, err
	}
	if err := VerifyWritable("owner", op.Owner); err != nil {
		return 0, err
	}
	if err := VerifyWritable("bond", op.Bond); err != nil {
		return 0, err
	}
	if _, err := VerifyDerivation("bond", op.Bond.Key, PositionSeeds(op.Owner.Key, owner.NextBondIndex), e.program()); err != nil {
		return 0, err
	}
	if err := e.requireEmpty("bond", op.Bond.Key); err != nil {
		return 0, err
	}
	if err := verifyVaults(cfg, op.RewardsPool, op.TreasuryVault, op.TeamVault, op.Mint); err != nil {
		return 0, err
	}
	source, err := e.walletTokenAccount("deposit source", op.DepositSource.Key, wallet, cfg.Mint)
	if err != nil {
		return 0, err
	}

	if owner.BondCount >= cfg.MaxBondsPerWallet {
		return 0, newError(CodeMaxBondsReached, "owner")
	}
	deposit, err := e.params.DepositAmount()
	if err != nil {
		return 0, err
	}
	if source.Amount < deposit {
		return 0, errorf(CodeInsufficientTokens, "deposit source", "balance %d below deposit %d", source.Amount, deposit)
	}

	shares := SplitDeposit(cfg.DepositSplit, deposit)
	for i, to := range [3]crypto.Address{cfg.RewardsPool, cfg.Treasury, cfg.Team} {
		if err := e.transfer(op.DepositSource.Key, to, cfg.Mint, wallet, shares[i]); err != nil {
			return 0, err
		}
	}

	nextOwner, pos, err := OpenPosition(*owner, op.Owner.Key, op.Bond.Key, cfg.MaxBondsPerWallet, e.now())
	if err != nil {
		return 0, err
	}
	if err := e.storePosition(op.Bond.Key, &pos); err != nil {
		return 0, err
	}
	if err := e.storeOwner(op.Owner.Key, &nextOwner); err != nil {
		return 0, err
	}
	e.emit(events.BondOpened{
		Wallet:   wallet,
		Position: op.Bond.Key,
		Index:    pos.Index,
		Source:   events.BondSourceDeposit,
		Amount:   deposit,
	})
	return pos.Index, nil
}

// ClaimResult summarises a settled claim.
type ClaimResult struct {
	Index      uint8
	Accrual    Accrual
	Paid       uint64
	Closed     bool
	Compounded bool
	// NewIndex is the reinvested position's index when Compounded is set.
	NewIndex uint8
}

// Claim settles the accrued reward of one position. A claim that reaches the
// emission cap closes the position and reclaims its record. With auto-compound
// requested, enough reward and spare capacity, a fixed share of the reward
// opens a new position instead of being paid out.
func (e *Engine) Claim(op *Claim) (*ClaimResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if op == nil {
		return nil, ErrInvalidInstruction
	}
	cfg, err := e.loadConfig(op.Config)
	if err != nil {
		return nil, err
	}
	if err := e.guardPaused(cfg); err != nil {
		return nil, err
	}
	wallet := op.Wallet.Key
	if err := VerifySigner("wallet", op.Wallet); err != nil {
		return nil, err
	}
	owner, err := e.loadOwner(op.Owner, wallet)
	if err != nil {
		return nil, err
	}
	if !owner.ActiveBonds.Contains(op.BondIndex) {
		return nil, errorf(CodeInvalidBondIndex, "bond", "index %d not listed", op.BondIndex)
	}
	pos, err := e.loadPosition(op.Bond, op.Owner.Key, op.BondIndex)
	if err != nil {
		return nil, err
	}
	if err := VerifyWritable("owner", op.Owner); err != nil {
		return nil, err
	}
	if err := VerifyWritable("bond", op.Bond); err != nil {
		return nil, err
	}
	if err := verifyVaults(cfg, op.RewardsPool, op.TreasuryVault, op.TeamVault, op.Mint); err != nil {
		return nil, err
	}
	if _, err := e.walletTokenAccount("destination", op.Destination.Key, wallet, cfg.Mint); err != nil {
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
	reward := acc.Reward

	pool, err := e.tokens.Account(cfg.RewardsPool)
	if err != nil {
		return nil, err
	}
	if pool == nil || pool.Amount < reward {
		return nil, newError(CodeInsufficientRewards, "rewards pool")
	}

	claimedAfter, err := checkedAdd(pos.TotalClaimed, reward)
	if err != nil {
		return nil, err
	}
	result := &ClaimResult{Index: pos.Index, Accrual: acc}
	nextOwner := *owner
	settled := *pos
	if claimedAfter >= cfg.MaxEmissionPerBond {
		nextOwner, settled, err = ClosePosition(nextOwner, settled)
		if err != nil {
			return nil, err
		}
		result.Closed = true
	}

	payout := reward
	compound, err := e.params.CompoundAmount()
	if err != nil {
		return nil, err
	}
	if op.AutoCompound && reward >= compound && nextOwner.BondCount < cfg.MaxBondsPerWallet {
		if err := VerifyWritable("new bond", op.NewBond); err != nil {
			return nil, err
		}
		if _, err := VerifyDerivation("new bond", op.NewBond.Key, PositionSeeds(op.Owner.Key, nextOwner.NextBondIndex), e.program()); err != nil {
			return nil, err
		}
		if err := e.requireEmpty("new bond", op.NewBond.Key); err != nil {
			return nil, err
		}
		var fresh BondPosition
		nextOwner, fresh, err = OpenPosition(nextOwner, op.Owner.Key, op.NewBond.Key, cfg.MaxBondsPerWallet, now)
		if err != nil {
			return nil, err
		}
		// The pool's share of the reinvested amount stays where it is.
		shares := SplitDeposit(cfg.DepositSplit, compound)
		if err := e.transfer(cfg.RewardsPool, cfg.Treasury, cfg.Mint, op.Config.Key, shares[1]); err != nil {
			return nil, err
		}
		if err := e.transfer(cfg.RewardsPool, cfg.Team, cfg.Mint, op.Config.Key, shares[2]); err != nil {
			return nil, err
		}
		if err := e.storePosition(op.NewBond.Key, &fresh); err != nil {
			return nil, err
		}
		payout -= compound
		result.Compounded = true
		result.NewIndex = fresh.Index
		e.emit(events.BondOpened{
			Wallet:   wallet,
			Position: op.NewBond.Key,
			Index:    fresh.Index,
			Source:   events.BondSourceCompound,
			Amount:   compound,
		})
	}

	if payout > 0 {
		if err := e.transfer(cfg.RewardsPool, op.Destination.Key, cfg.Mint, op.Config.Key, payout); err != nil {
			return nil, err
		}
	}
	result.Paid = payout

	settled.LastClaimTime = now
	settled.TotalClaimed = claimedAfter
	if result.Closed {
		if err := e.state.AccountDelete(op.Bond.Key); err != nil {
			return nil, err
		}
	} else if err := e.storePosition(op.Bond.Key, &settled); err != nil {
		return nil, err
	}

	nextOwner.TotalAccruedRewards, err = checkedAdd(nextOwner.TotalAccruedRewards, reward)
	if err != nil {
		return nil, err
	}
	if err := e.storeOwner(op.Owner.Key, &nextOwner); err != nil {
		return nil, err
	}

	e.emit(events.BondClaimed{
		Wallet:     wallet,
		Position:   op.Bond.Key,
		Index:      settled.Index,
		Reward:     reward,
		Paid:       payout,
		Compounded: result.Compounded,
	})
	if result.Closed {
		e.emit(events.BondClosed{
			Wallet:       wallet,
			Position:     op.Bond.Key,
			Index:        settled.Index,
			TotalClaimed: settled.TotalClaimed,
		})
	}
	return result, nil
}
