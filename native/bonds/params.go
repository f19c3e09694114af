package bonds

import (
	"fmt"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// ModuleName identifies the ledger in pause sets, metrics and logs.
const ModuleName = "bonds"

const (
	// DefaultDecimals is the precision of the value unit.
	DefaultDecimals uint8 = 9
	// DefaultBaseUnit is one whole token expressed in smallest units.
	DefaultBaseUnit uint64 = 1_000_000_000

	// DepositUnits is the fixed number of base units paid to open a position.
	DepositUnits uint64 = 10
	// CompoundUnits is the share of a claim reinvested into a new position.
	CompoundUnits uint64 = 8

	SecondsPerDay uint64 = 86_400
	// PenaltyWindow is how long after the last claim the penalty applies.
	PenaltyWindow = 5 * SecondsPerDay
	BasisPoints   = 10_000

	// MaxActiveBonds is the hard capacity of an owner's active set.
	MaxActiveBonds = 10

	DefaultDailyEmissionRate uint64 = 55_000_000
	DefaultClaimPenaltyBps   uint16 = 500
)

// DefaultDepositSplit routes deposits to the rewards pool, treasury and team.
var DefaultDepositSplit = [3]uint16{4000, 4000, 2000}

// Params carries the identity and economics an engine is bound to. Several
// engines with different params may coexist in one process.
type Params struct {
	ProgramID          crypto.Address
	BaseUnit           uint64
	Decimals           uint8
	DailyEmissionRate  uint64
	MaxEmissionPerBond uint64
	ClaimPenaltyBps    uint16
}

// DefaultParams returns the production economics for program.
func DefaultParams(program crypto.Address) Params {
	return Params{
		ProgramID:          program,
		BaseUnit:           DefaultBaseUnit,
		Decimals:           DefaultDecimals,
		DailyEmissionRate:  DefaultDailyEmissionRate,
		MaxEmissionPerBond: 20 * DefaultBaseUnit,
		ClaimPenaltyBps:    DefaultClaimPenaltyBps,
	}
}

// Validate reports the first inconsistent parameter.
func (p Params) Validate() error {
	if p.ProgramID.IsZero() {
		return fmt.Errorf("bonds: program id required")
	}
	if p.BaseUnit == 0 {
		return fmt.Errorf("bonds: base unit must be positive")
	}
	if p.ClaimPenaltyBps > BasisPoints {
		return fmt.Errorf("bonds: claim penalty %d exceeds %d bps", p.ClaimPenaltyBps, BasisPoints)
	}
	if _, err := p.DepositAmount(); err != nil {
		return err
	}
	return nil
}

// DepositAmount is the fixed value required to open a position.
func (p Params) DepositAmount() (uint64, error) {
	return checkedMul(DepositUnits, p.BaseUnit)
}

// CompoundAmount is the portion of a claim reserved for a reinvested position.
func (p Params) CompoundAmount() (uint64, error) {
	return checkedMul(CompoundUnits, p.BaseUnit)
}
