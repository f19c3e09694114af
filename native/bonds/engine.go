package bonds

import (
	"fmt"
	"time"

	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/common"
	"github.com/WillShirley13/testudo-bonds/native/token"
)

type engineState interface {
	AccountGet(addr crypto.Address) (*types.Account, error)
	AccountPut(addr crypto.Address, account *types.Account) error
	AccountDelete(addr crypto.Address) error
}

type tokenLedger interface {
	Account(addr crypto.Address) (*token.Account, error)
	CreateAssociated(wallet, mint, addr crypto.Address) error
	TransferChecked(from, to, mint, authority crypto.Address, amount uint64, decimals uint8) error
}

// Engine runs the bond ledger operations against injected state and value
// collaborators. It performs no locking and no rollback: the caller hands it a
// transactional state and discards that state when an operation fails.
type Engine struct {
	params  Params
	state   engineState
	tokens  tokenLedger
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64
}

// NewEngine constructs an engine bound to params with default dependencies.
func NewEngine(params Params) *Engine {
	return &Engine{
		params:  params,
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() Params { return e.params }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokens configures the value-transfer collaborator.
func (e *Engine) SetTokens(tokens tokenLedger) { e.tokens = tokens }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires an operator pause view. A paused module rejects open and
// claim operations exactly like the configuration's own pause flag.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokens
	}
	return nil
}

func (e *Engine) program() crypto.Address { return e.params.ProgramID }

func (e *Engine) guardPaused(cfg *Config) error {
	if cfg.Paused {
		return newError(CodeBondOperationsPaused, "config")
	}
	if err := common.Guard(e.pauses, ModuleName); err != nil {
		return errorf(CodeBondOperationsPaused, "config", "%v", err)
	}
	return nil
}

// loadRecord fetches a program record that must already exist.
func (e *Engine) loadRecord(name string, addr crypto.Address) (*types.Account, error) {
	account, err := e.state.AccountGet(addr)
	if err != nil {
		return nil, fmt.Errorf("bonds: load %s: %w", name, err)
	}
	if err := VerifyNonEmpty(name, account); err != nil {
		return nil, err
	}
	if err := VerifyOwner(name, account, e.program()); err != nil {
		return nil, err
	}
	return account, nil
}

// requireEmpty fails when a record already exists at addr.
func (e *Engine) requireEmpty(name string, addr crypto.Address) error {
	account, err := e.state.AccountGet(addr)
	if err != nil {
		return fmt.Errorf("bonds: load %s: %w", name, err)
	}
	return VerifyEmpty(name, account)
}

func (e *Engine) store(addr crypto.Address, data []byte) error {
	return e.state.AccountPut(addr, &types.Account{Owner: e.program(), Data: data})
}

func (e *Engine) loadConfig(meta types.AccountMeta) (*Config, error) {
	if _, err := VerifyDerivation("config", meta.Key, ConfigSeeds(), e.program()); err != nil {
		return nil, err
	}
	account, err := e.loadRecord("config", meta.Key)
	if err != nil {
		return nil, err
	}
	return DecodeConfig(account.Data)
}

func (e *Engine) storeConfig(addr crypto.Address, cfg *Config) error {
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	return e.store(addr, data)
}

// loadOwner verifies the owner record derives from wallet and belongs to it.
func (e *Engine) loadOwner(meta types.AccountMeta, wallet crypto.Address) (*OwnerAccount, error) {
	if _, err := VerifyDerivation("owner", meta.Key, OwnerSeeds(wallet), e.program()); err != nil {
		return nil, err
	}
	account, err := e.loadRecord("owner", meta.Key)
	if err != nil {
		return nil, err
	}
	owner, err := DecodeOwner(account.Data)
	if err != nil {
		return nil, err
	}
	if err := VerifyEqual("wallet", wallet, owner.Wallet); err != nil {
		return nil, err
	}
	return owner, nil
}

func (e *Engine) storeOwner(addr crypto.Address, owner *OwnerAccount) error {
	data, err := EncodeOwner(owner)
	if err != nil {
		return err
	}
	return e.store(addr, data)
}

func (e *Engine) loadPosition(meta types.AccountMeta, ownerAddr crypto.Address, index uint8) (*BondPosition, error) {
	if _, err := VerifyDerivation("bond", meta.Key, PositionSeeds(ownerAddr, index), e.program()); err != nil {
		return nil, err
	}
	account, err := e.loadRecord("bond", meta.Key)
	if err != nil {
		return nil, err
	}
	pos, err := DecodePosition(account.Data)
	if err != nil {
		return nil, err
	}
	if err := VerifyEqual("bond owner", ownerAddr, pos.Owner); err != nil {
		return nil, err
	}
	return pos, nil
}

func (e *Engine) storePosition(addr crypto.Address, pos *BondPosition) error {
	data, err := EncodePosition(pos)
	if err != nil {
		return err
	}
	return e.store(addr, data)
}

// verifyVaults checks the supplied value accounts against the configuration.
func verifyVaults(cfg *Config, pool, treasury, team, mint types.AccountMeta) error {
	if err := VerifyEqual("rewards pool", pool.Key, cfg.RewardsPool); err != nil {
		return err
	}
	if err := VerifyEqual("treasury", treasury.Key, cfg.Treasury); err != nil {
		return err
	}
	if err := VerifyEqual("team", team.Key, cfg.Team); err != nil {
		return err
	}
	return VerifyEqual("mint", mint.Key, cfg.Mint)
}

// walletTokenAccount loads a value account that must hold mint for wallet.
func (e *Engine) walletTokenAccount(name string, addr, wallet, mint crypto.Address) (*token.Account, error) {
	account, err := e.tokens.Account(addr)
	if err != nil {
		return nil, fmt.Errorf("bonds: load %s: %w", name, err)
	}
	if account == nil {
		return nil, errorf(CodeInvalidTokenAccounts, name, "account %s not found", addr)
	}
	if !account.Mint.Equal(mint) || !account.Owner.Equal(wallet) {
		return nil, errorf(CodeInvalidTokenAccounts, name, "account %s is not a %s account of %s", addr, mint, wallet)
	}
	return account, nil
}

func (e *Engine) transfer(from, to, mint, authority crypto.Address, amount uint64) error {
	if err := e.tokens.TransferChecked(from, to, mint, authority, amount, e.params.Decimals); err != nil {
		return fmt.Errorf("bonds: transfer %d from %s to %s: %w", amount, from, to, err)
	}
	return nil
}

// Process runs a decoded instruction.
func (e *Engine) Process(ins Instruction) error {
	switch op := ins.(type) {
	case *InitializeConfig:
		return e.InitializeConfig(op)
	case *OpenOwner:
		return e.OpenOwner(op)
	case *OpenBond:
		_, err := e.OpenBond(op)
		return err
	case *Claim:
		_, err := e.Claim(op)
		return err
	case *ReplaceConfig:
		return e.ReplaceConfig(op)
	default:
		return ErrUnknownInstruction
	}
}
