package types

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// ErrInvalidSignature is returned when an attached signature does not verify
// against the transaction message.
var ErrInvalidSignature = errors.New("transaction: invalid signature")

// Signature pairs a signer with its ed25519 signature over the transaction
// message hash.
type Signature struct {
	Signer    crypto.Address `json:"pubkey"`
	Signature [64]byte       `json:"signature"`
}

// Transaction carries one encoded instruction, the accounts it names and the
// signatures of every account flagged as a signer. RecentCommit is the hash
// of a recent CommitHeader; it bounds how long the signed message stays
// valid.
type Transaction struct {
	RecentCommit common.Hash   `json:"recentCommit"`
	Instruction  []byte        `json:"instruction"`
	Accounts     []AccountMeta `json:"accounts"`
	Signatures   []Signature   `json:"signatures"`
}

// Message returns the canonical bytes covered by signatures: the recent
// commit hash, the length-prefixed instruction, then each account key and its
// flag byte.
func (tx *Transaction) Message() []byte {
	size := common.HashLength + 4 + len(tx.Instruction) + len(tx.Accounts)*(crypto.AddressLength+1)
	buf := make([]byte, 0, size)
	buf = append(buf, tx.RecentCommit[:]...)
	buf = append(buf, byte(len(tx.Instruction)), byte(len(tx.Instruction)>>8), byte(len(tx.Instruction)>>16), byte(len(tx.Instruction)>>24))
	buf = append(buf, tx.Instruction...)
	for _, meta := range tx.Accounts {
		buf = append(buf, meta.Key[:]...)
		var flags byte
		if meta.IsSigner {
			flags |= 0x01
		}
		if meta.IsWritable {
			flags |= 0x02
		}
		buf = append(buf, flags)
	}
	return buf
}

// Hash returns the sha256 digest of Message.
func (tx *Transaction) Hash() [32]byte {
	return sha256.Sum256(tx.Message())
}

// Sign appends a signature by key over the transaction hash.
func (tx *Transaction) Sign(key *crypto.PrivateKey) error {
	if key == nil {
		return errors.New("transaction: nil signing key")
	}
	hash := tx.Hash()
	sig, err := key.Sign(hash[:])
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, Signature{Signer: key.Address(), Signature: sig})
	return nil
}

// VerifySignatures checks every attached signature and returns the set of
// verified signers. Any invalid signature fails the whole transaction.
func (tx *Transaction) VerifySignatures() (map[crypto.Address]bool, error) {
	hash := tx.Hash()
	signed := make(map[crypto.Address]bool, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		if !crypto.Verify(sig.Signer, hash[:], sig.Signature) {
			return nil, fmt.Errorf("%w for %s", ErrInvalidSignature, sig.Signer)
		}
		signed[sig.Signer] = true
	}
	return signed, nil
}
