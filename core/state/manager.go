package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/storage/trie"
)

// ErrNilManager is returned when a method is invoked on a nil manager.
var ErrNilManager = errors.New("state: manager unavailable")

// backend is the key/value surface shared by the trie and write overlays.
// Keys are already hashed.
type backend interface {
	Get(key []byte) ([]byte, error)
	Update(key, value []byte) error
	Delete(key []byte) error
}

// Manager reads and writes ledger records. A manager created with NewManager
// writes straight into the trie; one obtained from Begin writes into an
// overlay that only reaches the trie on Commit.
type Manager struct {
	store backend
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{store: tr}
}

func accountKey(addr crypto.Address) []byte {
	buf := make([]byte, len(accountPrefix)+crypto.AddressLength)
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return ethcrypto.Keccak256(buf)
}

func kvKey(key []byte) []byte {
	buf := make([]byte, len(kvPrefix)+len(key))
	copy(buf, kvPrefix)
	copy(buf[len(kvPrefix):], key)
	return ethcrypto.Keccak256(buf)
}

// AccountGet returns the record stored at addr, or nil when the account does
// not exist.
func (m *Manager) AccountGet(addr crypto.Address) (*types.Account, error) {
	if m == nil || m.store == nil {
		return nil, ErrNilManager
	}
	data, err := m.store.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	account := new(types.Account)
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, fmt.Errorf("state: decode account %s: %w", addr, err)
	}
	return account, nil
}

// AccountPut stores the record at addr. Storing an account without data is
// rejected; use AccountDelete to close it.
func (m *Manager) AccountPut(addr crypto.Address, account *types.Account) error {
	if m == nil || m.store == nil {
		return ErrNilManager
	}
	if account == nil || len(account.Data) == 0 {
		return fmt.Errorf("state: account %s must carry data", addr)
	}
	encoded, err := rlp.EncodeToBytes(account)
	if err != nil {
		return err
	}
	return m.store.Update(accountKey(addr), encoded)
}

// AccountDelete removes the record at addr. Deleting a missing account is a
// no-op.
func (m *Manager) AccountDelete(addr crypto.Address) error {
	if m == nil || m.store == nil {
		return ErrNilManager
	}
	return m.store.Delete(accountKey(addr))
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is namespaced and hashed with keccak256 before it reaches the trie.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.store == nil {
		return ErrNilManager
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.store.Update(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.store == nil {
		return false, ErrNilManager
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.store.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under key.
func (m *Manager) KVDelete(key []byte) error {
	if m == nil || m.store == nil {
		return ErrNilManager
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.store.Delete(kvKey(key))
}
