package bonds

import "github.com/WillShirley13/testudo-bonds/crypto"

// NewOwnerAccount returns the empty owner record for wallet.
func NewOwnerAccount(wallet crypto.Address) OwnerAccount {
	return OwnerAccount{Wallet: wallet}
}

// OpenPosition allocates the next index of owner for a position stored at
// positionAddr. The inputs are not modified; the updated owner and the new
// position are returned together.
func OpenPosition(owner OwnerAccount, ownerAddr, positionAddr crypto.Address, maxBonds uint8, now int64) (OwnerAccount, BondPosition, error) {
	if owner.BondCount >= maxBonds || owner.ActiveBonds.Full() {
		return owner, BondPosition{}, newError(CodeMaxBondsReached, "owner")
	}
	index := owner.NextBondIndex
	if index == ^uint8(0) {
		return owner, BondPosition{}, errorf(CodeNumericalOverflow, "owner", "bond index exhausted")
	}
	next := owner
	if !next.ActiveBonds.add(ActiveBond{Index: index, Position: positionAddr}) {
		return owner, BondPosition{}, errorf(CodeInvalidBondIndex, "owner", "index %d already listed", index)
	}
	next.BondCount++
	next.NextBondIndex++
	pos := BondPosition{
		Owner:         ownerAddr,
		Index:         index,
		CreationTime:  now,
		LastClaimTime: now,
		Active:        true,
	}
	return next, pos, nil
}

// ClosePosition removes pos from owner's active set and marks it inactive.
func ClosePosition(owner OwnerAccount, pos BondPosition) (OwnerAccount, BondPosition, error) {
	if !pos.Active {
		return owner, pos, newError(CodeBondNotActive, "bond")
	}
	next := owner
	if !next.ActiveBonds.remove(pos.Index) {
		return owner, pos, errorf(CodeInvalidBondIndex, "bond", "index %d not listed", pos.Index)
	}
	if next.BondCount == 0 {
		return owner, pos, errorf(CodeNumericalOverflow, "owner", "bond count underflow")
	}
	next.BondCount--
	pos.Active = false
	return next, pos, nil
}
