package bonds

import (
	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

// VerifyDerivation derives the canonical address for seeds and returns its
// bump. It fails when key is not that address.
func VerifyDerivation(name string, key crypto.Address, seeds [][]byte, program crypto.Address) (uint8, error) {
	expected, bump, err := crypto.FindAddress(seeds, program)
	if err != nil {
		return 0, errorf(CodeInvalidPda, name, "%v", err)
	}
	if !expected.Equal(key) {
		return 0, errorf(CodeInvalidPda, name, "expected %s, got %s", expected, key)
	}
	return bump, nil
}

// VerifyDerivationWithBump checks key against seeds and a known bump without
// searching.
func VerifyDerivationWithBump(name string, key crypto.Address, seeds [][]byte, bump uint8, program crypto.Address) error {
	expected, err := crypto.CreateAddress(seeds, bump, program)
	if err != nil {
		return errorf(CodeInvalidPda, name, "%v", err)
	}
	if !expected.Equal(key) {
		return errorf(CodeInvalidPda, name, "expected %s, got %s", expected, key)
	}
	return nil
}

// VerifyOwner checks that a stored record belongs to program.
func VerifyOwner(name string, account *types.Account, program crypto.Address) error {
	if account == nil || !account.Owner.Equal(program) {
		return newError(CodeInvalidProgramOwner, name)
	}
	return nil
}

func VerifySigner(name string, meta types.AccountMeta) error {
	if !meta.IsSigner {
		return newError(CodeExpectedSignerAccount, name)
	}
	return nil
}

func VerifyWritable(name string, meta types.AccountMeta) error {
	if !meta.IsWritable {
		return newError(CodeExpectedWritableAccount, name)
	}
	return nil
}

func VerifyEmpty(name string, account *types.Account) error {
	if !account.IsEmpty() {
		return newError(CodeExpectedEmptyAccount, name)
	}
	return nil
}

func VerifyNonEmpty(name string, account *types.Account) error {
	if account.IsEmpty() {
		return newError(CodeExpectedNonEmptyAccount, name)
	}
	return nil
}

// VerifyEqual fails with an account mismatch when got differs from expected.
func VerifyEqual(name string, got, expected crypto.Address) error {
	if !got.Equal(expected) {
		return errorf(CodeAccountMismatch, name, "expected %s, got %s", expected, got)
	}
	return nil
}

// VerifyBondValid fails unless pos is active and listed in owner's active set.
func VerifyBondValid(pos *BondPosition, owner *OwnerAccount) error {
	if pos == nil || !pos.Active {
		return newError(CodeBondNotActive, "bond")
	}
	if owner == nil || !owner.ActiveBonds.Contains(pos.Index) {
		return errorf(CodeInvalidBondIndex, "bond", "index %d not listed", pos.Index)
	}
	return nil
}
