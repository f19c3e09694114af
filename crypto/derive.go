package crypto

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrNoViableBump is returned when no bump in [0,255] yields an off-curve
// address for the supplied seeds.
var ErrNoViableBump = errors.New("crypto: unable to find a viable derived address bump")

// FindAddress derives the canonical address for seeds under program. The bump
// is searched downward from 255 until the candidate falls outside the ed25519
// curve, so that no private key can ever sign for it.
func FindAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	pk, bump, err := solana.FindProgramAddress(seeds, program.PublicKey())
	if err != nil {
		return Address{}, 0, ErrNoViableBump
	}
	return AddressFromPublicKey(pk), bump, nil
}

// CreateAddress recomputes a derived address from seeds and a known bump
// without searching. It fails when the result lies on the curve.
func CreateAddress(seeds [][]byte, bump uint8, program Address) (Address, error) {
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, []byte{bump})
	pk, err := solana.CreateProgramAddress(withBump, program.PublicKey())
	if err != nil {
		return Address{}, err
	}
	return AddressFromPublicKey(pk), nil
}

// AssociatedAddress returns the associated value-account address for wallet
// and mint.
func AssociatedAddress(wallet, mint Address) (Address, error) {
	pk, _, err := solana.FindAssociatedTokenAddress(wallet.PublicKey(), mint.PublicKey())
	if err != nil {
		return Address{}, err
	}
	return AddressFromPublicKey(pk), nil
}
