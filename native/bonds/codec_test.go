package bonds

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

func TestRecordSizes(t *testing.T) {
	if ConfigSize != 186 || OwnerSize != 376 || PositionSize != 58 {
		t.Fatalf("unexpected record sizes: %d %d %d", ConfigSize, OwnerSize, PositionSize)
	}
}

func TestConfigRecordRoundTrip(t *testing.T) {
	cfg := &Config{
		Authority:          crypto.Address{1},
		Treasury:           crypto.Address{2},
		Team:               crypto.Address{3},
		RewardsPool:        crypto.Address{4},
		Mint:               crypto.Address{5},
		DailyEmissionRate:  55_000_000,
		MaxEmissionPerBond: 20 * unit,
		MaxBondsPerWallet:  10,
		DepositSplit:       DefaultDepositSplit,
		ClaimPenaltyBps:    500,
		Paused:             true,
	}
	data, err := EncodeConfig(cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != ConfigSize {
		t.Fatalf("unexpected length %d", len(data))
	}
	// Field order is fixed: the mint follows the three value accounts.
	if data[4*32] != 5 {
		t.Fatalf("mint not at offset %d", 4*32)
	}
	got, err := DecodeConfig(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, err := DecodeConfig(data[:ConfigSize-1]); err == nil {
		t.Fatalf("expected short record to fail")
	}
}

func TestOwnerRecordRoundTrip(t *testing.T) {
	owner := NewOwnerAccount(crypto.Address{9})
	var err error
	for i := 0; i < 3; i++ {
		owner, _, err = OpenPosition(owner, crypto.Address{8}, crypto.Address{byte(20 + i)}, MaxActiveBonds, 1)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	owner.TotalAccruedRewards = 12345
	data, err := EncodeOwner(&owner)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != OwnerSize {
		t.Fatalf("unexpected length %d", len(data))
	}
	got, err := DecodeOwner(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Wallet != owner.Wallet || got.BondCount != 3 || got.NextBondIndex != 3 || got.TotalAccruedRewards != 12345 {
		t.Fatalf("unexpected owner: %+v", got)
	}
	entries := got.ActiveBonds.Slice()
	for i, entry := range entries {
		if entry.Index != uint8(i) || entry.Position != (crypto.Address{byte(20 + i)}) {
			t.Fatalf("entry %d out of order: %+v", i, entry)
		}
	}
}

func TestOwnerRecordRejectsInconsistentCount(t *testing.T) {
	owner := NewOwnerAccount(crypto.Address{9})
	owner.BondCount = 1
	if _, err := EncodeOwner(&owner); err == nil {
		t.Fatalf("expected encode to reject count mismatch")
	}

	owner.BondCount = 0
	data, err := EncodeOwner(&owner)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data[32] = 2
	_, err = DecodeOwner(data)
	if code, ok := CodeOf(err); !ok || code != CodeDeserialization {
		t.Fatalf("expected deserialization error, got %v", err)
	}
}

func TestOwnerRecordRejectsOversizedList(t *testing.T) {
	owner := NewOwnerAccount(crypto.Address{9})
	data, err := EncodeOwner(&owner)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	binary.LittleEndian.PutUint32(data[activeListOffset:], MaxActiveBonds+1)
	_, err = DecodeOwner(data)
	if code, ok := CodeOf(err); !ok || code != CodeDeserialization {
		t.Fatalf("expected deserialization error, got %v", err)
	}
}

func TestPositionRecordRoundTrip(t *testing.T) {
	pos := &BondPosition{
		Owner:         crypto.Address{7},
		Index:         4,
		CreationTime:  -5,
		LastClaimTime: 1_700_000_000,
		TotalClaimed:  99,
		Active:        true,
	}
	data, err := EncodePosition(pos)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodePosition(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *pos {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, err := DecodePosition(append(data, 0)); err == nil {
		t.Fatalf("expected oversized record to fail")
	}
}

func TestActiveSetJSON(t *testing.T) {
	owner := NewOwnerAccount(crypto.Address{1})
	owner, _, _ = OpenPosition(owner, crypto.Address{2}, crypto.Address{3}, MaxActiveBonds, 0)
	raw, err := json.Marshal(owner)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back OwnerAccount
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.ActiveBonds.Contains(0) || back.ActiveBonds.Len() != 1 {
		t.Fatalf("active set lost: %s", raw)
	}
	if err := json.Unmarshal([]byte(`[{"index":1},{"index":1}]`), &back.ActiveBonds); err == nil {
		t.Fatalf("expected duplicate indices to fail")
	}
}
