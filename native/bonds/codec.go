package bonds

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

// ownerRecord is the borsh layout of OwnerAccount; the active set travels as a
// u32 length-prefixed list.
type ownerRecord struct {
	Wallet              crypto.Address
	BondCount           uint8
	TotalAccruedRewards uint64
	ActiveBonds         []ActiveBond
	NextBondIndex       uint8
}

// activeListOffset is where the owner record's list length prefix begins.
const activeListOffset = 32 + 1 + 8

func encodePadded(account string, v interface{}, size int) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		return nil, errorf(CodeSerialization, account, "%v", err)
	}
	if buf.Len() > size {
		return nil, errorf(CodeSerialization, account, "encoded %d bytes exceeds record size %d", buf.Len(), size)
	}
	out := make([]byte, size)
	copy(out, buf.Bytes())
	return out, nil
}

func decodeSized(account string, data []byte, size int, v interface{}) error {
	if len(data) != size {
		return errorf(CodeDeserialization, account, "record is %d bytes, want %d", len(data), size)
	}
	if err := bin.NewBorshDecoder(data).Decode(v); err != nil {
		return errorf(CodeDeserialization, account, "%v", err)
	}
	return nil
}

// EncodeConfig serializes cfg into its fixed-size record.
func EncodeConfig(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, newError(CodeSerialization, "config")
	}
	return encodePadded("config", *cfg, ConfigSize)
}

// DecodeConfig parses a configuration record.
func DecodeConfig(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := decodeSized("config", data, ConfigSize, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EncodeOwner serializes owner into its fixed-size record.
func EncodeOwner(owner *OwnerAccount) ([]byte, error) {
	if owner == nil {
		return nil, newError(CodeSerialization, "owner")
	}
	if int(owner.BondCount) != owner.ActiveBonds.Len() {
		return nil, errorf(CodeSerialization, "owner", "bond count %d disagrees with %d active bonds", owner.BondCount, owner.ActiveBonds.Len())
	}
	rec := ownerRecord{
		Wallet:              owner.Wallet,
		BondCount:           owner.BondCount,
		TotalAccruedRewards: owner.TotalAccruedRewards,
		ActiveBonds:         owner.ActiveBonds.Slice(),
		NextBondIndex:       owner.NextBondIndex,
	}
	return encodePadded("owner", rec, OwnerSize)
}

// DecodeOwner parses an owner record and rebuilds its active set. Records
// whose count and list disagree are rejected.
func DecodeOwner(data []byte) (*OwnerAccount, error) {
	if len(data) == OwnerSize {
		if n := binary.LittleEndian.Uint32(data[activeListOffset:]); n > MaxActiveBonds {
			return nil, errorf(CodeDeserialization, "owner", "active bond list of %d exceeds %d", n, MaxActiveBonds)
		}
	}
	var rec ownerRecord
	if err := decodeSized("owner", data, OwnerSize, &rec); err != nil {
		return nil, err
	}
	if int(rec.BondCount) != len(rec.ActiveBonds) {
		return nil, errorf(CodeDeserialization, "owner", "bond count %d disagrees with %d active bonds", rec.BondCount, len(rec.ActiveBonds))
	}
	owner := &OwnerAccount{
		Wallet:              rec.Wallet,
		BondCount:           rec.BondCount,
		TotalAccruedRewards: rec.TotalAccruedRewards,
		NextBondIndex:       rec.NextBondIndex,
	}
	for _, entry := range rec.ActiveBonds {
		if !owner.ActiveBonds.add(entry) {
			return nil, errorf(CodeDeserialization, "owner", "duplicate bond index %d", entry.Index)
		}
	}
	return owner, nil
}

// EncodePosition serializes pos into its fixed-size record.
func EncodePosition(pos *BondPosition) ([]byte, error) {
	if pos == nil {
		return nil, newError(CodeSerialization, "bond")
	}
	return encodePadded("bond", *pos, PositionSize)
}

// DecodePosition parses a position record.
func DecodePosition(data []byte) (*BondPosition, error) {
	pos := new(BondPosition)
	if err := decodeSized("bond", data, PositionSize, pos); err != nil {
		return nil, err
	}
	return pos, nil
}
