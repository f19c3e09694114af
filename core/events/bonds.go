package events

import (
	"strconv"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

const (
	// TypeBondConfigInitialized is emitted once the global configuration exists.
	TypeBondConfigInitialized = "bonds.config.initialized"
	// TypeBondConfigReplaced is emitted when the authority rewrites the configuration.
	TypeBondConfigReplaced = "bonds.config.replaced"
	// TypeBondOwnerOpened is emitted when a wallet creates its owner record.
	TypeBondOwnerOpened = "bonds.owner.opened"
	// TypeBondOpened is emitted for every new position, deposited or compounded.
	TypeBondOpened = "bonds.position.opened"
	// TypeBondClaimed is emitted when rewards are settled for a position.
	TypeBondClaimed = "bonds.position.claimed"
	// TypeBondClosed is emitted when a position reaches its emission cap.
	TypeBondClosed = "bonds.position.closed"

	// BondSourceDeposit marks positions funded by a wallet deposit.
	BondSourceDeposit = "deposit"
	// BondSourceCompound marks positions funded from rewards.
	BondSourceCompound = "compound"
)

// BondConfigInitialized records the collaborators fixed at initialization.
type BondConfigInitialized struct {
	Config      crypto.Address
	Authority   crypto.Address
	RewardsPool crypto.Address
	Treasury    crypto.Address
	Team        crypto.Address
	Mint        crypto.Address
}

// EventType satisfies the Event interface.
func (BondConfigInitialized) EventType() string { return TypeBondConfigInitialized }

// Event converts the structured payload into a broadcastable event.
func (e BondConfigInitialized) Event() *types.Event {
	return &types.Event{Type: TypeBondConfigInitialized, Attributes: map[string]string{
		"config":      e.Config.String(),
		"authority":   e.Authority.String(),
		"rewardsPool": e.RewardsPool.String(),
		"treasury":    e.Treasury.String(),
		"team":        e.Team.String(),
		"mint":        e.Mint.String(),
	}}
}

// BondConfigReplaced summarises the economics after a replacement.
type BondConfigReplaced struct {
	Authority          crypto.Address
	Paused             bool
	DailyEmissionRate  uint64
	MaxEmissionPerBond uint64
	ClaimPenaltyBps    uint64
}

// EventType satisfies the Event interface.
func (BondConfigReplaced) EventType() string { return TypeBondConfigReplaced }

// Event converts the structured payload into a broadcastable event.
func (e BondConfigReplaced) Event() *types.Event {
	return &types.Event{Type: TypeBondConfigReplaced, Attributes: map[string]string{
		"authority":   e.Authority.String(),
		"paused":      strconv.FormatBool(e.Paused),
		"dailyRate":   strconv.FormatUint(e.DailyEmissionRate, 10),
		"maxEmission": strconv.FormatUint(e.MaxEmissionPerBond, 10),
		"penaltyBps":  strconv.FormatUint(e.ClaimPenaltyBps, 10),
	}}
}

// BondOwnerOpened captures owner record creation.
type BondOwnerOpened struct {
	Wallet crypto.Address
	Owner  crypto.Address
}

// EventType satisfies the Event interface.
func (BondOwnerOpened) EventType() string { return TypeBondOwnerOpened }

// Event converts the structured payload into a broadcastable event.
func (e BondOwnerOpened) Event() *types.Event {
	return &types.Event{Type: TypeBondOwnerOpened, Attributes: map[string]string{
		"wallet": e.Wallet.String(),
		"owner":  e.Owner.String(),
	}}
}

// BondOpened captures a new position.
type BondOpened struct {
	Wallet   crypto.Address
	Position crypto.Address
	Index    uint8
	Source   string
	Amount   uint64
}

// EventType satisfies the Event interface.
func (BondOpened) EventType() string { return TypeBondOpened }

// Event converts the structured payload into a broadcastable event.
func (e BondOpened) Event() *types.Event {
	return &types.Event{Type: TypeBondOpened, Attributes: map[string]string{
		"wallet":   e.Wallet.String(),
		"position": e.Position.String(),
		"index":    strconv.FormatUint(uint64(e.Index), 10),
		"source":   e.Source,
		"amount":   strconv.FormatUint(e.Amount, 10),
	}}
}

// BondClaimed captures a settled claim. Reward is the post-penalty, post-cap
// amount; Paid is what reached the wallet after any compounding.
type BondClaimed struct {
	Wallet     crypto.Address
	Position   crypto.Address
	Index      uint8
	Reward     uint64
	Paid       uint64
	Compounded bool
}

// EventType satisfies the Event interface.
func (BondClaimed) EventType() string { return TypeBondClaimed }

// Event converts the structured payload into a broadcastable event.
func (e BondClaimed) Event() *types.Event {
	return &types.Event{Type: TypeBondClaimed, Attributes: map[string]string{
		"wallet":     e.Wallet.String(),
		"position":   e.Position.String(),
		"index":      strconv.FormatUint(uint64(e.Index), 10),
		"reward":     strconv.FormatUint(e.Reward, 10),
		"paid":       strconv.FormatUint(e.Paid, 10),
		"compounded": strconv.FormatBool(e.Compounded),
	}}
}

// BondClosed captures a position retired at its emission cap.
type BondClosed struct {
	Wallet       crypto.Address
	Position     crypto.Address
	Index        uint8
	TotalClaimed uint64
}

// EventType satisfies the Event interface.
func (BondClosed) EventType() string { return TypeBondClosed }

// Event converts the structured payload into a broadcastable event.
func (e BondClosed) Event() *types.Event {
	return &types.Event{Type: TypeBondClosed, Attributes: map[string]string{
		"wallet":       e.Wallet.String(),
		"position":     e.Position.String(),
		"index":        strconv.FormatUint(uint64(e.Index), 10),
		"totalClaimed": strconv.FormatUint(e.TotalClaimed, 10),
	}}
}
