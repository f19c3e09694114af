package bonds

import (
	"encoding/json"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// Persisted record sizes in bytes.
const (
	ConfigSize   = 32*5 + 8 + 8 + 1 + 3*2 + 2 + 1
	OwnerSize    = 32 + 1 + 8 + (4 + MaxActiveBonds*(1+32)) + 1
	PositionSize = 32 + 1 + 8 + 8 + 8 + 1
)

// Config is the single global configuration record. Treasury, Team and
// RewardsPool reference value accounts of Mint, not wallets.
type Config struct {
	Authority          crypto.Address `json:"authority"`
	Treasury           crypto.Address `json:"treasury"`
	Team               crypto.Address `json:"team"`
	RewardsPool        crypto.Address `json:"rewardsPool"`
	Mint               crypto.Address `json:"mint"`
	DailyEmissionRate  uint64         `json:"dailyEmissionRate"`
	MaxEmissionPerBond uint64         `json:"maxEmissionPerBond"`
	MaxBondsPerWallet  uint8          `json:"maxBondsPerWallet"`
	DepositSplit       [3]uint16      `json:"depositSplit"`
	ClaimPenaltyBps    uint16         `json:"claimPenaltyBps"`
	Paused             bool           `json:"paused"`
}

// ActiveBond pairs a position index with the position record address.
type ActiveBond struct {
	Index    uint8          `json:"index"`
	Position crypto.Address `json:"position"`
}

// ActiveSet is the bounded, insertion-ordered set of an owner's open
// positions. Indices are unique within the set.
type ActiveSet struct {
	slots [MaxActiveBonds]ActiveBond
	n     uint8
}

// Len returns the number of occupied slots.
func (s *ActiveSet) Len() int { return int(s.n) }

// Full reports whether every slot is occupied.
func (s *ActiveSet) Full() bool { return int(s.n) == MaxActiveBonds }

// Slice returns the occupied slots in insertion order.
func (s *ActiveSet) Slice() []ActiveBond {
	out := make([]ActiveBond, s.n)
	copy(out, s.slots[:s.n])
	return out
}

// Find returns the entry for index.
func (s *ActiveSet) Find(index uint8) (ActiveBond, bool) {
	for i := 0; i < int(s.n); i++ {
		if s.slots[i].Index == index {
			return s.slots[i], true
		}
	}
	return ActiveBond{}, false
}

// Contains reports whether index is listed.
func (s *ActiveSet) Contains(index uint8) bool {
	_, ok := s.Find(index)
	return ok
}

// add appends entry. It fails when the set is full or the index is taken.
func (s *ActiveSet) add(entry ActiveBond) bool {
	if s.Full() || s.Contains(entry.Index) {
		return false
	}
	s.slots[s.n] = entry
	s.n++
	return true
}

// remove drops index while preserving the order of the remaining entries.
func (s *ActiveSet) remove(index uint8) bool {
	for i := 0; i < int(s.n); i++ {
		if s.slots[i].Index != index {
			continue
		}
		copy(s.slots[i:s.n], s.slots[i+1:s.n])
		s.n--
		s.slots[s.n] = ActiveBond{}
		return true
	}
	return false
}

func (s ActiveSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *ActiveSet) UnmarshalJSON(data []byte) error {
	var entries []ActiveBond
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	next := ActiveSet{}
	for _, entry := range entries {
		if !next.add(entry) {
			return errorf(CodeDeserialization, "owner", "invalid active bond list")
		}
	}
	*s = next
	return nil
}

// OwnerAccount tracks a wallet's open positions and lifetime totals.
// BondCount always equals ActiveBonds.Len().
type OwnerAccount struct {
	Wallet              crypto.Address `json:"wallet"`
	BondCount           uint8          `json:"bondCount"`
	TotalAccruedRewards uint64         `json:"totalAccruedRewards"`
	ActiveBonds         ActiveSet      `json:"activeBonds"`
	NextBondIndex       uint8          `json:"nextBondIndex"`
}

// BondPosition is a single interest-accruing deposit. Owner references the
// owner record address, not the wallet.
type BondPosition struct {
	Owner         crypto.Address `json:"owner"`
	Index         uint8          `json:"index"`
	CreationTime  int64          `json:"creationTime"`
	LastClaimTime int64          `json:"lastClaimTime"`
	TotalClaimed  uint64         `json:"totalClaimed"`
	Active        bool           `json:"active"`
}
