package bonds

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

// Kind is the leading tag byte of an encoded instruction.
type Kind uint8

const (
	KindInitializeConfig Kind = iota
	KindOpenOwner
	KindOpenBond
	KindClaim
	KindReplaceConfig
)

func (k Kind) String() string {
	switch k {
	case KindInitializeConfig:
		return "initialize_config"
	case KindOpenOwner:
		return "open_owner"
	case KindOpenBond:
		return "open_bond"
	case KindClaim:
		return "claim"
	case KindReplaceConfig:
		return "replace_config"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Instruction is a decoded ledger operation. Accounts lists the metas in wire
// order.
type Instruction interface {
	Kind() Kind
	Accounts() []types.AccountMeta
}

type InitializeConfig struct {
	Config        types.AccountMeta
	Authority     types.AccountMeta
	RewardsPool   types.AccountMeta
	Treasury      types.AccountMeta
	TreasuryVault types.AccountMeta
	Team          types.AccountMeta
	TeamVault     types.AccountMeta
	Mint          types.AccountMeta
}

func (*InitializeConfig) Kind() Kind { return KindInitializeConfig }

func (op *InitializeConfig) Accounts() []types.AccountMeta {
	return []types.AccountMeta{op.Config, op.Authority, op.RewardsPool, op.Treasury, op.TreasuryVault, op.Team, op.TeamVault, op.Mint}
}

type OpenOwner struct {
	Owner  types.AccountMeta
	Wallet types.AccountMeta
}

func (*OpenOwner) Kind() Kind { return KindOpenOwner }

func (op *OpenOwner) Accounts() []types.AccountMeta {
	return []types.AccountMeta{op.Owner, op.Wallet}
}

type OpenBond struct {
	Bond          types.AccountMeta
	Wallet        types.AccountMeta
	Owner         types.AccountMeta
	Config        types.AccountMeta
	DepositSource types.AccountMeta
	RewardsPool   types.AccountMeta
	TreasuryVault types.AccountMeta
	TeamVault     types.AccountMeta
	Mint          types.AccountMeta
}

func (*OpenBond) Kind() Kind { return KindOpenBond }

func (op *OpenBond) Accounts() []types.AccountMeta {
	return []types.AccountMeta{op.Bond, op.Wallet, op.Owner, op.Config, op.DepositSource, op.RewardsPool, op.TreasuryVault, op.TeamVault, op.Mint}
}

type Claim struct {
	Bond          types.AccountMeta
	Wallet        types.AccountMeta
	Owner         types.AccountMeta
	Destination   types.AccountMeta
	Config        types.AccountMeta
	RewardsPool   types.AccountMeta
	TreasuryVault types.AccountMeta
	TeamVault     types.AccountMeta
	NewBond       types.AccountMeta
	Mint          types.AccountMeta

	BondIndex    uint8
	AutoCompound bool
}

func (*Claim) Kind() Kind { return KindClaim }

func (op *Claim) Accounts() []types.AccountMeta {
	return []types.AccountMeta{op.Bond, op.Wallet, op.Owner, op.Destination, op.Config, op.RewardsPool, op.TreasuryVault, op.TeamVault, op.NewBond, op.Mint}
}

type ReplaceConfig struct {
	Config    types.AccountMeta
	Authority types.AccountMeta

	NewConfig Config
}

func (*ReplaceConfig) Kind() Kind { return KindReplaceConfig }

func (op *ReplaceConfig) Accounts() []types.AccountMeta {
	return []types.AccountMeta{op.Config, op.Authority}
}

type claimPayload struct {
	BondIndex    uint8
	AutoCompound bool
}

const claimPayloadSize = 2

// Encode returns the wire bytes of ins: the kind tag followed by its borsh
// payload, if any.
func Encode(ins Instruction) ([]byte, error) {
	if ins == nil {
		return nil, ErrInvalidInstruction
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(ins.Kind()))
	var payload interface{}
	switch op := ins.(type) {
	case *Claim:
		payload = claimPayload{BondIndex: op.BondIndex, AutoCompound: op.AutoCompound}
	case *ReplaceConfig:
		payload = op.NewConfig
	}
	if payload != nil {
		if err := bin.NewBorshEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
	}
	return buf.Bytes(), nil
}

func takeAccounts(metas []types.AccountMeta, want int) ([]types.AccountMeta, error) {
	if len(metas) < want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNotEnoughAccounts, len(metas), want)
	}
	if len(metas) > want {
		return nil, fmt.Errorf("%w: %d accounts, want %d", ErrInvalidInstruction, len(metas), want)
	}
	return metas, nil
}

func requirePayload(rest []byte, size int) error {
	if len(rest) != size {
		return fmt.Errorf("%w: payload is %d bytes, want %d", ErrInvalidInstruction, len(rest), size)
	}
	return nil
}

// Decode turns wire bytes and positional account metas into a typed
// instruction. The account count must match the instruction exactly.
func Decode(data []byte, metas []types.AccountMeta) (Instruction, error) {
	if len(data) == 0 {
		return nil, ErrInvalidInstruction
	}
	kind, rest := Kind(data[0]), data[1:]
	switch kind {
	case KindInitializeConfig:
		if err := requirePayload(rest, 0); err != nil {
			return nil, err
		}
		a, err := takeAccounts(metas, 8)
		if err != nil {
			return nil, err
		}
		return &InitializeConfig{
			Config: a[0], Authority: a[1], RewardsPool: a[2], Treasury: a[3],
			TreasuryVault: a[4], Team: a[5], TeamVault: a[6], Mint: a[7],
		}, nil
	case KindOpenOwner:
		if err := requirePayload(rest, 0); err != nil {
			return nil, err
		}
		a, err := takeAccounts(metas, 2)
		if err != nil {
			return nil, err
		}
		return &OpenOwner{Owner: a[0], Wallet: a[1]}, nil
	case KindOpenBond:
		if err := requirePayload(rest, 0); err != nil {
			return nil, err
		}
		a, err := takeAccounts(metas, 9)
		if err != nil {
			return nil, err
		}
		return &OpenBond{
			Bond: a[0], Wallet: a[1], Owner: a[2], Config: a[3], DepositSource: a[4],
			RewardsPool: a[5], TreasuryVault: a[6], TeamVault: a[7], Mint: a[8],
		}, nil
	case KindClaim:
		if err := requirePayload(rest, claimPayloadSize); err != nil {
			return nil, err
		}
		var payload claimPayload
		if err := bin.NewBorshDecoder(rest).Decode(&payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
		a, err := takeAccounts(metas, 10)
		if err != nil {
			return nil, err
		}
		return &Claim{
			Bond: a[0], Wallet: a[1], Owner: a[2], Destination: a[3], Config: a[4],
			RewardsPool: a[5], TreasuryVault: a[6], TeamVault: a[7], NewBond: a[8], Mint: a[9],
			BondIndex: payload.BondIndex, AutoCompound: payload.AutoCompound,
		}, nil
	case KindReplaceConfig:
		if err := requirePayload(rest, ConfigSize); err != nil {
			return nil, err
		}
		var cfg Config
		if err := bin.NewBorshDecoder(rest).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
		}
		a, err := takeAccounts(metas, 2)
		if err != nil {
			return nil, err
		}
		return &ReplaceConfig{Config: a[0], Authority: a[1], NewConfig: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownInstruction, data[0])
	}
}

func readonly(key crypto.Address) types.AccountMeta { return types.NewMeta(key, false, false) }
func writable(key crypto.Address) types.AccountMeta { return types.NewMeta(key, false, true) }
func signer(key crypto.Address) types.AccountMeta { return types.NewMeta(key, true, false) }

// BuildInitializeConfig assembles the initialization instruction. Treasury and
// team sign alongside the authority.
func BuildInitializeConfig(program, authority, treasury, team, mint crypto.Address) (*InitializeConfig, error) {
	cfgAddr, _, err := ConfigAddress(program)
	if err != nil {
		return nil, err
	}
	pool, err := crypto.AssociatedAddress(cfgAddr, mint)
	if err != nil {
		return nil, err
	}
	treasuryVault, err := crypto.AssociatedAddress(treasury, mint)
	if err != nil {
		return nil, err
	}
	teamVault, err := crypto.AssociatedAddress(team, mint)
	if err != nil {
		return nil, err
	}
	return &InitializeConfig{
		Config:        writable(cfgAddr),
		Authority:     types.NewMeta(authority, true, true),
		RewardsPool:   writable(pool),
		Treasury:      signer(treasury),
		TreasuryVault: writable(treasuryVault),
		Team:          signer(team),
		TeamVault:     writable(teamVault),
		Mint:          readonly(mint),
	}, nil
}

// BuildOpenOwner assembles the owner creation instruction for wallet.
func BuildOpenOwner(program, wallet crypto.Address) (*OpenOwner, error) {
	ownerAddr, _, err := OwnerAddress(program, wallet)
	if err != nil {
		return nil, err
	}
	return &OpenOwner{Owner: writable(ownerAddr), Wallet: types.NewMeta(wallet, true, true)}, nil
}

// BuildOpenBond assembles a deposit for wallet's next position.
func BuildOpenBond(program, wallet crypto.Address, owner *OwnerAccount, cfg *Config) (*OpenBond, error) {
	if owner == nil || cfg == nil {
		return nil, ErrInvalidInstruction
	}
	cfgAddr, _, err := ConfigAddress(program)
	if err != nil {
		return nil, err
	}
	ownerAddr, _, err := OwnerAddress(program, wallet)
	if err != nil {
		return nil, err
	}
	bondAddr, _, err := PositionAddress(program, ownerAddr, owner.NextBondIndex)
	if err != nil {
		return nil, err
	}
	source, err := crypto.AssociatedAddress(wallet, cfg.Mint)
	if err != nil {
		return nil, err
	}
	return &OpenBond{
		Bond:          writable(bondAddr),
		Wallet:        types.NewMeta(wallet, true, true),
		Owner:         writable(ownerAddr),
		Config:        readonly(cfgAddr),
		DepositSource: writable(source),
		RewardsPool:   writable(cfg.RewardsPool),
		TreasuryVault: writable(cfg.Treasury),
		TeamVault:     writable(cfg.Team),
		Mint:          readonly(cfg.Mint),
	}, nil
}

// BuildClaim assembles a claim of the position at index. The new-bond slot is
// always supplied so the ledger can compound when it decides to.
func BuildClaim(program, wallet crypto.Address, index uint8, autoCompound bool, owner *OwnerAccount, cfg *Config) (*Claim, error) {
	if owner == nil || cfg == nil {
		return nil, ErrInvalidInstruction
	}
	cfgAddr, _, err := ConfigAddress(program)
	if err != nil {
		return nil, err
	}
	ownerAddr, _, err := OwnerAddress(program, wallet)
	if err != nil {
		return nil, err
	}
	bondAddr, _, err := PositionAddress(program, ownerAddr, index)
	if err != nil {
		return nil, err
	}
	newBond, _, err := PositionAddress(program, ownerAddr, owner.NextBondIndex)
	if err != nil {
		return nil, err
	}
	dest, err := crypto.AssociatedAddress(wallet, cfg.Mint)
	if err != nil {
		return nil, err
	}
	return &Claim{
		Bond:          writable(bondAddr),
		Wallet:        types.NewMeta(wallet, true, true),
		Owner:         writable(ownerAddr),
		Destination:   writable(dest),
		Config:        readonly(cfgAddr),
		RewardsPool:   writable(cfg.RewardsPool),
		TreasuryVault: writable(cfg.Treasury),
		TeamVault:     writable(cfg.Team),
		NewBond:       writable(newBond),
		Mint:          readonly(cfg.Mint),
		BondIndex:     index,
		AutoCompound:  autoCompound,
	}, nil
}

// BuildReplaceConfig assembles an authority-signed replacement of the whole
// configuration record.
func BuildReplaceConfig(program, authority crypto.Address, next Config) (*ReplaceConfig, error) {
	cfgAddr, _, err := ConfigAddress(program)
	if err != nil {
		return nil, err
	}
	return &ReplaceConfig{
		Config:    writable(cfgAddr),
		Authority: signer(authority),
		NewConfig: next,
	}, nil
}
