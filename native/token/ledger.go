package token

import (
	"errors"
	"fmt"

	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

var (
	errNilState = errors.New("token: state not configured")

	ErrMintExists         = errors.New("token: mint already exists")
	ErrMintNotFound       = errors.New("token: mint not found")
	ErrAccountNotFound    = errors.New("token: account not found")
	ErrAccountExists      = errors.New("token: account already exists")
	ErrOwnerMismatch      = errors.New("token: authority does not own source account")
	ErrMintMismatch       = errors.New("token: account mint mismatch")
	ErrDecimalsMismatch   = errors.New("token: decimals mismatch")
	ErrInsufficientFunds  = errors.New("token: insufficient funds")
	ErrMintAuthority      = errors.New("token: invalid mint authority")
	ErrAssociatedMismatch = errors.New("token: address is not the associated account")
	ErrBalanceOverflow    = errors.New("token: balance overflow")
	ErrSupplyOverflow     = errors.New("token: supply overflow")
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Ledger moves value between token accounts. It is the only component that
// mutates balances.
type Ledger struct {
	state   ledgerState
	emitter events.Emitter
}

// NewLedger constructs a ledger with a discarding emitter.
func NewLedger() *Ledger {
	return &Ledger{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

// SetEmitter configures the event emitter used by the ledger.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil {
		return
	}
	l.emitter.Emit(evt)
}

func (l *Ledger) ready() error {
	if l == nil || l.state == nil {
		return errNilState
	}
	return nil
}

// Mint returns the mint stored at addr or nil when absent.
func (l *Ledger) Mint(addr crypto.Address) (*Mint, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	mint := new(Mint)
	ok, err := l.state.KVGet(mintKey(addr), mint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return mint, nil
}

// Account returns the token account stored at addr or nil when absent.
func (l *Ledger) Account(addr crypto.Address) (*Account, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	account := new(Account)
	ok, err := l.state.KVGet(accountKey(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return account, nil
}

// Balance returns the amount held at addr. Missing accounts hold nothing.
func (l *Ledger) Balance(addr crypto.Address) (uint64, error) {
	account, err := l.Account(addr)
	if err != nil || account == nil {
		return 0, err
	}
	return account.Amount, nil
}

// CreateMint registers a new mint at addr.
func (l *Ledger) CreateMint(addr, authority crypto.Address, decimals uint8) error {
	if err := l.ready(); err != nil {
		return err
	}
	existing, err := l.Mint(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrMintExists
	}
	return l.state.KVPut(mintKey(addr), &Mint{Authority: authority, Decimals: decimals})
}

// CreateAccount opens an empty account for owner at an arbitrary address.
func (l *Ledger) CreateAccount(addr, mint, owner crypto.Address) error {
	if err := l.ready(); err != nil {
		return err
	}
	if m, err := l.Mint(mint); err != nil {
		return err
	} else if m == nil {
		return ErrMintNotFound
	}
	existing, err := l.Account(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAccountExists
	}
	return l.state.KVPut(accountKey(addr), &Account{Mint: mint, Owner: owner})
}

// CreateAssociated opens the associated account of wallet for mint at addr.
// addr must equal the derived associated address. An existing account with the
// same mint and owner is accepted unchanged.
func (l *Ledger) CreateAssociated(wallet, mint, addr crypto.Address) error {
	if err := l.ready(); err != nil {
		return err
	}
	expected, err := crypto.AssociatedAddress(wallet, mint)
	if err != nil {
		return err
	}
	if !expected.Equal(addr) {
		return ErrAssociatedMismatch
	}
	existing, err := l.Account(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.Mint.Equal(mint) || !existing.Owner.Equal(wallet) {
			return ErrAssociatedMismatch
		}
		return nil
	}
	return l.CreateAccount(addr, mint, wallet)
}

// MintTo creates amount new units of mint in the account at to.
func (l *Ledger) MintTo(mint, to, authority crypto.Address, amount uint64) error {
	if err := l.ready(); err != nil {
		return err
	}
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMintNotFound
	}
	if !m.Authority.Equal(authority) {
		return ErrMintAuthority
	}
	dest, err := l.Account(to)
	if err != nil {
		return err
	}
	if dest == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, to)
	}
	if !dest.Mint.Equal(mint) {
		return ErrMintMismatch
	}
	if amount == 0 {
		return nil
	}
	if m.Supply+amount < m.Supply {
		return ErrSupplyOverflow
	}
	if dest.Amount+amount < dest.Amount {
		return ErrBalanceOverflow
	}
	m.Supply += amount
	dest.Amount += amount
	if err := l.state.KVPut(mintKey(mint), m); err != nil {
		return err
	}
	if err := l.state.KVPut(accountKey(to), dest); err != nil {
		return err
	}
	l.emit(events.TokenSupply{Mint: mint, Total: m.Supply, Delta: amount, Reason: events.SupplyReasonMint})
	return nil
}

// TransferChecked moves amount from one account to another. authority must
// own the source, both accounts must hold mint and decimals must match the
// mint. A zero amount is accepted without touching state.
func (l *Ledger) TransferChecked(from, to, mint, authority crypto.Address, amount uint64, decimals uint8) error {
	if err := l.ready(); err != nil {
		return err
	}
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMintNotFound
	}
	if m.Decimals != decimals {
		return ErrDecimalsMismatch
	}
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, from)
	}
	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if dst == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, to)
	}
	if !src.Mint.Equal(mint) || !dst.Mint.Equal(mint) {
		return ErrMintMismatch
	}
	if !src.Owner.Equal(authority) {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if amount == 0 || from.Equal(to) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrBalanceOverflow
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := l.state.KVPut(accountKey(from), src); err != nil {
		return err
	}
	if err := l.state.KVPut(accountKey(to), dst); err != nil {
		return err
	}
	l.emit(events.TokenTransfer{Mint: mint, From: from, To: to, Amount: amount})
	return nil
}
