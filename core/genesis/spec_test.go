package genesis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WillShirley13/testudo-bonds/core/state"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/token"
	"github.com/WillShirley13/testudo-bonds/storage"
	"github.com/WillShirley13/testudo-bonds/storage/trie"
)

func newLedger(t *testing.T) *token.Ledger {
	t.Helper()
	tr, err := trie.NewTrie(storage.NewMemDB(), nil)
	require.NoError(t, err)
	ledger := token.NewLedger()
	ledger.SetState(state.NewManager(tr))
	return ledger
}

func TestApplyCreatesMintAndAllocations(t *testing.T) {
	mint := crypto.Address{1}
	authority := crypto.Address{2}
	holder := crypto.Address{3}
	spec := &Spec{
		Mint:          mint.String(),
		MintAuthority: authority.Base58(),
		Decimals:      9,
		Allocations:   []AllocationSpec{{Owner: holder.String(), Amount: 25_000_000_000}},
	}

	ledger := newLedger(t)
	applied, err := Apply(ledger, spec)
	require.NoError(t, err)
	require.True(t, applied)

	m, err := ledger.Mint(mint)
	require.NoError(t, err)
	require.Equal(t, authority, m.Authority)
	require.Equal(t, uint64(25_000_000_000), m.Supply)

	ata, err := crypto.AssociatedAddress(holder, mint)
	require.NoError(t, err)
	balance, err := ledger.Balance(ata)
	require.NoError(t, err)
	require.Equal(t, uint64(25_000_000_000), balance)

	applied, err = Apply(ledger, spec)
	require.NoError(t, err)
	require.False(t, applied)
	balance, err = ledger.Balance(ata)
	require.NoError(t, err)
	require.Equal(t, uint64(25_000_000_000), balance)
}

func TestSpecValidate(t *testing.T) {
	holder := crypto.Address{3}.String()
	base := Spec{Mint: crypto.Address{1}.String(), MintAuthority: crypto.Address{2}.String()}

	bad := base
	bad.Mint = "not-an-address"
	require.Error(t, bad.Validate())

	zero := base
	zero.Allocations = []AllocationSpec{{Owner: holder}}
	require.Error(t, zero.Validate())

	dup := base
	dup.Allocations = []AllocationSpec{{Owner: holder, Amount: 1}, {Owner: holder, Amount: 2}}
	require.Error(t, dup.Validate())

	ok := base
	require.NoError(t, ok.Validate())
	require.Equal(t, crypto.Address{1}, ok.MintAddress())
}
