package genesis

import (
	"fmt"

	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/token"
)

// tokenLedger is the subset of the token ledger genesis writes through.
type tokenLedger interface {
	Mint(addr crypto.Address) (*token.Mint, error)
	CreateMint(addr, authority crypto.Address, decimals uint8) error
	CreateAssociated(wallet, mint, addr crypto.Address) error
	MintTo(mint, to, authority crypto.Address, amount uint64) error
}

// Apply creates the mint and credits every allocation. It reports false
// without writing anything when the mint already exists.
func Apply(ledger tokenLedger, spec *Spec) (bool, error) {
	if err := spec.Validate(); err != nil {
		return false, err
	}
	existing, err := ledger.Mint(spec.mint)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := ledger.CreateMint(spec.mint, spec.authority, spec.Decimals); err != nil {
		return false, fmt.Errorf("genesis: create mint: %w", err)
	}
	for _, alloc := range spec.allocs {
		ata, err := crypto.AssociatedAddress(alloc.owner, spec.mint)
		if err != nil {
			return false, fmt.Errorf("genesis: allocation for %s: %w", alloc.owner, err)
		}
		if err := ledger.CreateAssociated(alloc.owner, spec.mint, ata); err != nil {
			return false, fmt.Errorf("genesis: allocation for %s: %w", alloc.owner, err)
		}
		if err := ledger.MintTo(spec.mint, ata, spec.authority, alloc.amount); err != nil {
			return false, fmt.Errorf("genesis: allocation for %s: %w", alloc.owner, err)
		}
	}
	return true, nil
}
