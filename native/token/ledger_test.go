package token

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/core/state"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/storage"
	"github.com/WillShirley13/testudo-bonds/storage/trie"
)

type fixture struct {
	ledger    *Ledger
	recorder  *events.Recorder
	mint      crypto.Address
	authority crypto.Address
	alice     crypto.Address
	aliceATA  crypto.Address
	bob       crypto.Address
	bobATA    crypto.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)

	f := &fixture{
		ledger:    NewLedger(),
		recorder:  events.NewRecorder(0),
		mint:      crypto.Address{0x10},
		authority: crypto.Address{0x20},
		alice:     crypto.Address{0x30},
		bob:       crypto.Address{0x40},
	}
	f.ledger.SetState(state.NewManager(tr))
	f.ledger.SetEmitter(f.recorder)

	f.aliceATA, err = crypto.AssociatedAddress(f.alice, f.mint)
	require.NoError(t, err)
	f.bobATA, err = crypto.AssociatedAddress(f.bob, f.mint)
	require.NoError(t, err)

	require.NoError(t, f.ledger.CreateMint(f.mint, f.authority, 9))
	require.NoError(t, f.ledger.CreateAssociated(f.alice, f.mint, f.aliceATA))
	require.NoError(t, f.ledger.CreateAssociated(f.bob, f.mint, f.bobATA))
	return f
}

func TestCreateMintRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.ledger.CreateMint(f.mint, f.authority, 6), ErrMintExists)
}

func TestCreateAssociated(t *testing.T) {
	f := newFixture(t)

	// Re-creating the same associated account is accepted.
	require.NoError(t, f.ledger.CreateAssociated(f.alice, f.mint, f.aliceATA))

	require.ErrorIs(t, f.ledger.CreateAssociated(f.alice, f.mint, f.bobATA), ErrAssociatedMismatch)

	acct, err := f.ledger.Account(f.aliceATA)
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, f.alice, acct.Owner)
	require.Equal(t, f.mint, acct.Mint)
	require.Zero(t, acct.Amount)
}

func TestMintTo(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.ledger.MintTo(f.mint, f.aliceATA, f.alice, 5), ErrMintAuthority)
	require.NoError(t, f.ledger.MintTo(f.mint, f.aliceATA, f.authority, 500))

	bal, err := f.ledger.Balance(f.aliceATA)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal)

	mint, err := f.ledger.Mint(f.mint)
	require.NoError(t, err)
	require.Equal(t, uint64(500), mint.Supply)

	evts := f.recorder.Events()
	require.Len(t, evts, 1)
	require.Equal(t, events.TypeTokenSupply, evts[0].Type)
}

func TestTransferChecked(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.MintTo(f.mint, f.aliceATA, f.authority, 100))

	require.NoError(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, f.mint, f.alice, 40, 9))

	aliceBal, err := f.ledger.Balance(f.aliceATA)
	require.NoError(t, err)
	bobBal, err := f.ledger.Balance(f.bobATA)
	require.NoError(t, err)
	require.Equal(t, uint64(60), aliceBal)
	require.Equal(t, uint64(40), bobBal)
}

func TestTransferCheckedFailures(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.MintTo(f.mint, f.aliceATA, f.authority, 10))

	require.ErrorIs(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, f.mint, f.bob, 1, 9), ErrOwnerMismatch)
	require.ErrorIs(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, f.mint, f.alice, 1, 6), ErrDecimalsMismatch)
	require.ErrorIs(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, f.mint, f.alice, 11, 9), ErrInsufficientFunds)
	require.ErrorIs(t, f.ledger.TransferChecked(f.aliceATA, crypto.Address{0x99}, f.mint, f.alice, 1, 9), ErrAccountNotFound)

	other := crypto.Address{0x11}
	require.NoError(t, f.ledger.CreateMint(other, f.authority, 9))
	require.ErrorIs(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, other, f.alice, 1, 9), ErrMintMismatch)

	bal, err := f.ledger.Balance(f.aliceATA)
	require.NoError(t, err)
	require.Equal(t, uint64(10), bal)
}

func TestTransferCheckedZeroAmountIsNoop(t *testing.T) {
	f := newFixture(t)
	before := len(f.recorder.Events())
	require.NoError(t, f.ledger.TransferChecked(f.aliceATA, f.bobATA, f.mint, f.alice, 0, 9))
	require.Len(t, f.recorder.Events(), before)
}
