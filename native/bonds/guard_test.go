package bonds

import (
	"testing"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

func TestVerifyDerivation(t *testing.T) {
	program := crypto.Address{9}
	addr, bump, err := ConfigAddress(program)
	if err != nil {
		t.Fatalf("derive config: %v", err)
	}

	got, err := VerifyDerivation("config", addr, ConfigSeeds(), program)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != bump {
		t.Fatalf("bump = %d, want %d", got, bump)
	}
	if err := VerifyDerivationWithBump("config", addr, ConfigSeeds(), bump, program); err != nil {
		t.Fatalf("verify with bump: %v", err)
	}

	expectCode(t, mustFail(VerifyDerivation("config", crypto.Address{1}, ConfigSeeds(), program)), CodeInvalidPda)
	expectCode(t, VerifyDerivationWithBump("config", crypto.Address{1}, ConfigSeeds(), bump, program), CodeInvalidPda)

	other, _, err := ConfigAddress(crypto.Address{8})
	if err != nil {
		t.Fatalf("derive other: %v", err)
	}
	expectCode(t, mustFail(VerifyDerivation("config", other, ConfigSeeds(), program)), CodeInvalidPda)
}

func mustFail(_ uint8, err error) error { return err }

func TestAccountChecks(t *testing.T) {
	program := crypto.Address{9}
	key := crypto.Address{1}
	stored := &types.Account{Owner: program, Data: []byte{1}}

	if err := VerifyOwner("owner", stored, program); err != nil {
		t.Fatalf("owner: %v", err)
	}
	expectCode(t, VerifyOwner("owner", stored, crypto.Address{2}), CodeInvalidProgramOwner)
	expectCode(t, VerifyOwner("owner", nil, program), CodeInvalidProgramOwner)

	expectCode(t, VerifySigner("wallet", types.NewMeta(key, false, true)), CodeExpectedSignerAccount)
	expectCode(t, VerifyWritable("bond", types.NewMeta(key, true, false)), CodeExpectedWritableAccount)
	if err := VerifySigner("wallet", types.NewMeta(key, true, false)); err != nil {
		t.Fatalf("signer: %v", err)
	}

	if err := VerifyEmpty("bond", nil); err != nil {
		t.Fatalf("empty: %v", err)
	}
	expectCode(t, VerifyEmpty("bond", stored), CodeExpectedEmptyAccount)
	expectCode(t, VerifyNonEmpty("bond", &types.Account{Owner: program}), CodeExpectedNonEmptyAccount)

	expectCode(t, VerifyEqual("mint", key, crypto.Address{2}), CodeAccountMismatch)
	if err := VerifyEqual("mint", key, key); err != nil {
		t.Fatalf("equal: %v", err)
	}
}
