package events

import (
	"strconv"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

const (
	// TypeTokenSupply is emitted whenever a mint's supply changes.
	TypeTokenSupply = "token.supply"
	// TypeTokenTransfer is emitted for every non-zero value transfer.
	TypeTokenTransfer = "token.transfer"

	// SupplyReasonMint identifies mint driven supply increases.
	SupplyReasonMint = "mint"
)

// TokenSupply captures a supply delta for a mint.
type TokenSupply struct {
	Mint   crypto.Address
	Total  uint64
	Delta  uint64
	Reason string
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

// Event renders the structured supply change event for downstream consumers.
func (e TokenSupply) Event() *types.Event {
	attrs := map[string]string{
		"mint":  e.Mint.String(),
		"total": strconv.FormatUint(e.Total, 10),
		"delta": strconv.FormatUint(e.Delta, 10),
	}
	if e.Reason != "" {
		attrs["reason"] = e.Reason
	}
	return &types.Event{Type: TypeTokenSupply, Attributes: attrs}
}

// TokenTransfer captures a value movement between two token accounts.
type TokenTransfer struct {
	Mint   crypto.Address
	From   crypto.Address
	To     crypto.Address
	Amount uint64
}

func (TokenTransfer) EventType() string { return TypeTokenTransfer }

// Event renders the transfer payload.
func (e TokenTransfer) Event() *types.Event {
	return &types.Event{Type: TypeTokenTransfer, Attributes: map[string]string{
		"mint":   e.Mint.String(),
		"from":   e.From.String(),
		"to":     e.To.String(),
		"amount": strconv.FormatUint(e.Amount, 10),
	}}
}
