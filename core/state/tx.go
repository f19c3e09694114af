package state

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTxClosed is returned when a committed or discarded transaction is used.
var ErrTxClosed = errors.New("state: transaction closed")

type overlayEntry struct {
	value   []byte
	deleted bool
}

// overlay buffers writes on top of a parent backend. Reads observe the
// buffered writes first.
type overlay struct {
	parent backend
	writes map[string]overlayEntry
	closed bool
}

func (o *overlay) Get(key []byte) ([]byte, error) {
	if o.closed {
		return nil, ErrTxClosed
	}
	if entry, ok := o.writes[string(key)]; ok {
		if entry.deleted {
			return nil, nil
		}
		return append([]byte(nil), entry.value...), nil
	}
	return o.parent.Get(key)
}

func (o *overlay) Update(key, value []byte) error {
	if o.closed {
		return ErrTxClosed
	}
	if len(value) == 0 {
		return o.Delete(key)
	}
	o.writes[string(key)] = overlayEntry{value: append([]byte(nil), value...)}
	return nil
}

func (o *overlay) Delete(key []byte) error {
	if o.closed {
		return ErrTxClosed
	}
	o.writes[string(key)] = overlayEntry{deleted: true}
	return nil
}

// Tx is a transactional view over a manager. All reads and writes go through
// the embedded Manager; nothing reaches the parent until Commit.
type Tx struct {
	*Manager
	ov *overlay
}

// Begin opens a transaction over the manager's current state. Transactions may
// be nested; a nested commit lands in the enclosing transaction.
func (m *Manager) Begin() (*Tx, error) {
	if m == nil || m.store == nil {
		return nil, ErrNilManager
	}
	ov := &overlay{parent: m.store, writes: make(map[string]overlayEntry)}
	return &Tx{Manager: &Manager{store: ov}, ov: ov}, nil
}

// Pending reports how many keys the transaction has written.
func (tx *Tx) Pending() int {
	if tx == nil || tx.ov == nil {
		return 0
	}
	return len(tx.ov.writes)
}

// Commit flushes buffered writes to the parent in key order and closes the
// transaction. When the parent rejects a write, keys already flushed are
// restored to their previous values before the error is returned.
func (tx *Tx) Commit() error {
	if tx == nil || tx.ov == nil {
		return ErrNilManager
	}
	if tx.ov.closed {
		return ErrTxClosed
	}
	keys := make([]string, 0, len(tx.ov.writes))
	for key := range tx.ov.writes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	previous := make([][]byte, len(keys))
	for i, key := range keys {
		value, err := tx.ov.parent.Get([]byte(key))
		if err != nil {
			return err
		}
		previous[i] = value
	}
	for i, key := range keys {
		if err := flush(tx.ov.parent, key, tx.ov.writes[key]); err != nil {
			if undoErr := restore(tx.ov.parent, keys[:i], previous[:i]); undoErr != nil {
				return fmt.Errorf("%w (restore failed: %v)", err, undoErr)
			}
			return err
		}
	}
	tx.ov.writes = nil
	tx.ov.closed = true
	return nil
}

func flush(parent backend, key string, entry overlayEntry) error {
	if entry.deleted {
		return parent.Delete([]byte(key))
	}
	return parent.Update([]byte(key), entry.value)
}

func restore(parent backend, keys []string, values [][]byte) error {
	for i := len(keys) - 1; i >= 0; i-- {
		var err error
		if len(values[i]) == 0 {
			err = parent.Delete([]byte(keys[i]))
		} else {
			err = parent.Update([]byte(keys[i]), values[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write and closes the transaction. Discarding a
// closed transaction is a no-op.
func (tx *Tx) Discard() {
	if tx == nil || tx.ov == nil || tx.ov.closed {
		return
	}
	tx.ov.writes = nil
	tx.ov.closed = true
}
