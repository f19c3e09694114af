package types

import (
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// CommitHeader describes one durable state commit. Headers chain through
// ParentRoot so a restarted node can resume at the recorded height.
type CommitHeader struct {
	Height     uint64      `json:"height"`
	Timestamp  uint64      `json:"timestamp"`
	ParentRoot common.Hash `json:"parentRoot"`
	StateRoot  common.Hash `json:"stateRoot"`
}

// Encode returns the RLP encoding of the header.
func (h *CommitHeader) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(h)
}

// DecodeCommitHeader parses an encoded header.
func DecodeCommitHeader(data []byte) (*CommitHeader, error) {
	h := new(CommitHeader)
	if err := rlp.DecodeBytes(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Hash is the keccak256 digest of the encoded header.
func (h *CommitHeader) Hash() (common.Hash, error) {
	enc, err := h.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(enc), nil
}
