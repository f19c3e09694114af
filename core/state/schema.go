package state

import (
	"errors"
	"fmt"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// SchemaVersion is the record layout this binary reads and writes.
const SchemaVersion uint32 = 1

var (
	ErrSchemaVersion   = errors.New("state: unsupported schema version")
	ErrProgramMismatch = errors.New("state: state belongs to another program")
)

var schemaKey = []byte("schema")

// Schema is stamped into a fresh state and binds it to one program id.
type Schema struct {
	Version uint32
	Program crypto.Address
}

// Schema returns the stored stamp, or nil for a state that was never
// stamped.
func (m *Manager) Schema() (*Schema, error) {
	var s Schema
	ok, err := m.KVGet(schemaKey, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// EnsureSchema stamps an unstamped state for program and otherwise checks the
// existing stamp against it.
func EnsureSchema(m *Manager, program crypto.Address) error {
	if program.IsZero() {
		return fmt.Errorf("state: program id required")
	}
	stored, err := m.Schema()
	if err != nil {
		return err
	}
	if stored == nil {
		return m.KVPut(schemaKey, &Schema{Version: SchemaVersion, Program: program})
	}
	if stored.Version != SchemaVersion {
		return fmt.Errorf("%w: on-disk=%d expected=%d", ErrSchemaVersion, stored.Version, SchemaVersion)
	}
	if stored.Program != program {
		return fmt.Errorf("%w: %s", ErrProgramMismatch, stored.Program)
	}
	return nil
}
