package types

import "github.com/WillShirley13/testudo-bonds/crypto"

// Account is a persisted record slot. Owner names the program allowed to
// mutate Data; an account that does not exist is represented by a nil
// *Account rather than an empty one.
type Account struct {
	Owner crypto.Address
	Data  []byte
}

// IsEmpty reports whether the account holds no data.
func (a *Account) IsEmpty() bool {
	return a == nil || len(a.Data) == 0
}

// Clone returns a deep copy so callers can mutate the data buffer freely.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{Owner: a.Owner, Data: append([]byte(nil), a.Data...)}
}

// AccountMeta names an account an operation touches together with the
// capabilities the submitter claims for it.
type AccountMeta struct {
	Key        crypto.Address `json:"pubkey"`
	IsSigner   bool           `json:"signer"`
	IsWritable bool           `json:"writable"`
}

// NewMeta is shorthand for building account metas in clients and tests.
func NewMeta(key crypto.Address, signer, writable bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer, IsWritable: writable}
}
