package rpc

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
)

// SignatureJSON carries a signature in its base58 text form.
type SignatureJSON struct {
	Pubkey    crypto.Address `json:"pubkey"`
	Signature string         `json:"signature"`
}

// SubmitRequest is the body of POST /tx.
type SubmitRequest struct {
	RecentCommit common.Hash         `json:"recentCommit"`
	Instruction  string              `json:"instruction"`
	Accounts     []types.AccountMeta `json:"accounts"`
	Signatures   []SignatureJSON     `json:"signatures"`
}

// NewSubmitRequest renders a signed transaction for the wire.
func NewSubmitRequest(tx *types.Transaction) SubmitRequest {
	req := SubmitRequest{
		RecentCommit: tx.RecentCommit,
		Instruction:  base64.StdEncoding.EncodeToString(tx.Instruction),
		Accounts:     append([]types.AccountMeta(nil), tx.Accounts...),
		Signatures:   make([]SignatureJSON, 0, len(tx.Signatures)),
	}
	for _, sig := range tx.Signatures {
		req.Signatures = append(req.Signatures, SignatureJSON{
			Pubkey:    sig.Signer,
			Signature: solana.Signature(sig.Signature).String(),
		})
	}
	return req
}

// Transaction parses the request back into a transaction.
func (r SubmitRequest) Transaction() (*types.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(r.Instruction)
	if err != nil {
		return nil, fmt.Errorf("instruction: %w", err)
	}
	tx := &types.Transaction{
		RecentCommit: r.RecentCommit,
		Instruction:  data,
		Accounts:     r.Accounts,
		Signatures:   make([]types.Signature, 0, len(r.Signatures)),
	}
	for i, sig := range r.Signatures {
		parsed, err := solana.SignatureFromBase58(sig.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		tx.Signatures = append(tx.Signatures, types.Signature{Signer: sig.Pubkey, Signature: parsed})
	}
	return tx, nil
}

// SubmitResult is the reply to an applied transaction.
type SubmitResult struct {
	OK        bool           `json:"ok"`
	Root      string         `json:"root"`
	RequestID string         `json:"requestId"`
	Kind      string         `json:"kind"`
	Events    []*types.Event `json:"events,omitempty"`
}

// ErrorBody describes a rejected request. Code is the ledger error code when
// the ledger rejected the operation and -1 otherwise.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// HeadView describes the newest commit. Hash is what transactions sign as
// their recent commit.
type HeadView struct {
	Height    uint64      `json:"height"`
	Timestamp uint64      `json:"timestamp"`
	StateRoot common.Hash `json:"stateRoot"`
	Hash      common.Hash `json:"hash"`
}

type ConfigView struct {
	Address crypto.Address `json:"address"`
	Config  *bonds.Config  `json:"config"`
}

type OwnerView struct {
	Address crypto.Address      `json:"address"`
	Owner   *bonds.OwnerAccount `json:"owner"`
}

type PositionView struct {
	Address  crypto.Address      `json:"address"`
	Position *bonds.BondPosition `json:"position"`
}

type BalanceView struct {
	Address crypto.Address `json:"address"`
	Mint    crypto.Address `json:"mint"`
	Owner   crypto.Address `json:"owner"`
	Amount  uint64         `json:"amount"`
}
