package genesis

import (
	"fmt"
	"strings"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// Spec describes the value mint and the initial balances written into an empty
// state.
type Spec struct {
	Mint          string           `json:"mint" toml:"Mint"`
	MintAuthority string           `json:"mintAuthority" toml:"MintAuthority"`
	Decimals      uint8            `json:"decimals" toml:"Decimals"`
	Allocations   []AllocationSpec `json:"allocations" toml:"Allocations"`

	mint      crypto.Address
	authority crypto.Address
	allocs    []allocation
}

// AllocationSpec credits Amount smallest units to the associated value account
// of Owner.
type AllocationSpec struct {
	Owner  string `json:"owner" toml:"Owner"`
	Amount uint64 `json:"amount" toml:"Amount"`
}

type allocation struct {
	owner  crypto.Address
	amount uint64
}

// Validate parses every address and rejects duplicate or empty allocations.
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("genesis: spec required")
	}
	mint, err := crypto.ParseAddress(s.Mint)
	if err != nil {
		return fmt.Errorf("genesis: mint: %w", err)
	}
	authority, err := crypto.ParseAddress(s.MintAuthority)
	if err != nil {
		return fmt.Errorf("genesis: mint authority: %w", err)
	}
	seen := make(map[crypto.Address]struct{}, len(s.Allocations))
	allocs := make([]allocation, 0, len(s.Allocations))
	for i, alloc := range s.Allocations {
		owner, err := crypto.ParseAddress(strings.TrimSpace(alloc.Owner))
		if err != nil {
			return fmt.Errorf("genesis: allocation %d: %w", i, err)
		}
		if alloc.Amount == 0 {
			return fmt.Errorf("genesis: allocation %d has zero amount", i)
		}
		if _, dup := seen[owner]; dup {
			return fmt.Errorf("genesis: duplicate allocation for %s", owner)
		}
		seen[owner] = struct{}{}
		allocs = append(allocs, allocation{owner: owner, amount: alloc.Amount})
	}
	s.mint = mint
	s.authority = authority
	s.allocs = allocs
	return nil
}

// MintAddress returns the parsed mint. Validate must have succeeded.
func (s *Spec) MintAddress() crypto.Address { return s.mint }
