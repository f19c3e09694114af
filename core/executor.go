package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/core/genesis"
	"github.com/WillShirley13/testudo-bonds/core/state"
	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
	nativecommon "github.com/WillShirley13/testudo-bonds/native/common"
	"github.com/WillShirley13/testudo-bonds/native/token"
	"github.com/WillShirley13/testudo-bonds/observability"
	"github.com/WillShirley13/testudo-bonds/storage"
	"github.com/WillShirley13/testudo-bonds/storage/trie"
)

var (
	// ErrMissingSignature is returned when an account flagged as signer has no
	// valid signature on the transaction.
	ErrMissingSignature = errors.New("executor: missing signature")
	ErrNilTransaction   = errors.New("executor: nil transaction")
)

var headKey = []byte("testudo/head")

// LoadHead returns the header written by the last Commit, or nil when the
// database has never been committed to.
func LoadHead(db storage.Database) (*types.CommitHeader, error) {
	data, err := db.Get(headKey)
	if err != nil || len(data) == 0 {
		return nil, nil
	}
	return types.DecodeCommitHeader(data)
}

// HeadRoot returns the state root of LoadHead, or nil when there is none.
func HeadRoot(db storage.Database) []byte {
	head, err := LoadHead(db)
	if err != nil || head == nil {
		return nil
	}
	return head.StateRoot.Bytes()
}

// Receipt describes an applied operation.
type Receipt struct {
	RequestID string         `json:"requestId"`
	Kind      string         `json:"kind"`
	Events    []*types.Event `json:"events"`
}

// Executor runs bond ledger operations one at a time. Each operation executes
// against a state transaction that is committed when the operation succeeds
// and discarded otherwise, so a failed operation leaves no trace. Events
// raised during an operation are only published after its commit.
type Executor struct {
	mu sync.Mutex

	db            storage.Database
	trie          *trie.Trie
	state         *state.Manager
	committedRoot common.Hash
	height        uint64
	head          types.CommitHeader
	replay        *replayGuard

	engine *bonds.Engine
	tokens *token.Ledger

	// view collaborators stay bound to the committed manager.
	viewEngine *bonds.Engine
	viewTokens *token.Ledger

	emitter events.Emitter
	logger  *slog.Logger
	metrics *observability.BondLedgerMetrics
	nowFn   func() int64
}

// NewExecutor opens the state trie at root and binds a bond engine with
// params to it.
func NewExecutor(db storage.Database, root []byte, params bonds.Params) (*Executor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tr, err := trie.NewTrie(db, root)
	if err != nil {
		return nil, err
	}
	manager := state.NewManager(tr)
	if err := state.EnsureSchema(manager, params.ProgramID); err != nil {
		return nil, err
	}

	head, err := LoadHead(db)
	if err != nil {
		return nil, fmt.Errorf("executor: read head: %w", err)
	}
	if head == nil || head.StateRoot != tr.Root() {
		head = &types.CommitHeader{StateRoot: tr.Root()}
	}
	anchor, err := head.Hash()
	if err != nil {
		return nil, err
	}

	viewTokens := token.NewLedger()
	viewTokens.SetState(manager)
	viewEngine := bonds.NewEngine(params)
	viewEngine.SetState(manager)
	viewEngine.SetTokens(viewTokens)

	return &Executor{
		db:            db,
		trie:          tr,
		state:         manager,
		committedRoot: tr.Root(),
		height:        head.Height,
		head:          *head,
		replay:        newReplayGuard(RecentCommitWindow, anchor),
		engine:        bonds.NewEngine(params),
		tokens:        token.NewLedger(),
		viewEngine:    viewEngine,
		viewTokens:    viewTokens,
		emitter:       events.NoopEmitter{},
		logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		nowFn:         func() int64 { return time.Now().Unix() },
	}, nil
}

// SetEmitter configures where committed events are published.
func (x *Executor) SetEmitter(emitter events.Emitter) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	x.emitter = emitter
}

func (x *Executor) SetLogger(logger *slog.Logger) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	x.logger = logger
}

func (x *Executor) SetMetrics(metrics *observability.BondLedgerMetrics) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.metrics = metrics
}

// SetPauses installs an operator pause view on the bond engine.
func (x *Executor) SetPauses(p nativecommon.PauseView) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.engine.SetPauses(p)
}

// SetNowFunc overrides the host clock. Nil restores wall-clock seconds.
func (x *Executor) SetNowFunc(now func() int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	x.nowFn = now
	x.viewEngine.SetNowFunc(now)
}

// Params returns the bond engine parameters.
func (x *Executor) Params() bonds.Params { return x.engine.Params() }

// Execute verifies, decodes and applies one transaction atomically.
func (x *Executor) Execute(ctx context.Context, tx *types.Transaction) (*Receipt, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()
	op := "unknown"
	logger := x.logger.With("request_id", requestID)

	receipt, err := x.apply(tx, requestID, &op)
	code := -1
	if c, ok := bonds.CodeOf(err); ok {
		code = int(c)
	}
	x.metrics.Observe(op, err, code, time.Since(start))
	if err != nil {
		attrs := []any{"op", op, "error", err}
		if code >= 0 {
			attrs = append(attrs, "code", code)
		}
		logger.Warn("bond operation rejected", attrs...)
		return nil, err
	}
	logger.Info("bond operation applied", "op", op, "events", len(receipt.Events))
	return receipt, nil
}

func (x *Executor) apply(tx *types.Transaction, requestID string, op *string) (*Receipt, error) {
	signed, err := tx.VerifySignatures()
	if err != nil {
		return nil, err
	}
	for _, meta := range tx.Accounts {
		if meta.IsSigner && !signed[meta.Key] {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, meta.Key)
		}
	}
	txHash := common.Hash(tx.Hash())
	if err := x.replay.check(tx.RecentCommit, txHash); err != nil {
		return nil, err
	}

	ins, err := bonds.Decode(tx.Instruction, tx.Accounts)
	if err != nil {
		return nil, err
	}
	*op = ins.Kind().String()

	stx, err := x.state.Begin()
	if err != nil {
		return nil, err
	}
	buffer := &events.Buffer{}
	x.tokens.SetState(stx)
	x.tokens.SetEmitter(buffer)
	x.engine.SetState(stx)
	x.engine.SetTokens(x.tokens)
	x.engine.SetEmitter(buffer)
	x.engine.SetNowFunc(x.nowFn)

	if err := x.engine.Process(ins); err != nil {
		stx.Discard()
		buffer.Reset()
		return nil, err
	}
	if err := stx.Commit(); err != nil {
		buffer.Reset()
		// The trie may hold a partial flush; drop everything since the
		// last Commit.
		if rbErr := x.trie.Rollback(); rbErr != nil {
			x.logger.Error("state rollback failed", "error", rbErr)
		}
		return nil, fmt.Errorf("executor: commit: %w", err)
	}
	x.replay.record(tx.RecentCommit, txHash)

	receipt := &Receipt{RequestID: requestID, Kind: *op}
	for _, evt := range buffer.Events() {
		x.observeEvent(evt)
		if payload, ok := evt.(events.Payload); ok {
			if rendered := payload.Event(); rendered != nil {
				receipt.Events = append(receipt.Events, rendered)
			}
		}
	}
	buffer.Flush(x.emitter)
	return receipt, nil
}

func (x *Executor) observeEvent(evt events.Event) {
	switch e := evt.(type) {
	case events.BondOpened:
		x.metrics.RecordOpened(e.Source)
	case events.BondClaimed:
		x.metrics.RecordPaid(e.Paid)
	case events.BondClosed:
		x.metrics.RecordClosed()
	}
}

// ApplyGenesis creates the value mint and allocations of spec when the mint
// does not exist yet, then commits the state root. It reports whether
// anything was written.
func (x *Executor) ApplyGenesis(spec *genesis.Spec) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	stx, err := x.state.Begin()
	if err != nil {
		return false, err
	}
	ledger := token.NewLedger()
	ledger.SetState(stx)
	applied, err := genesis.Apply(ledger, spec)
	if err != nil || !applied {
		stx.Discard()
		return false, err
	}
	if err := stx.Commit(); err != nil {
		return false, err
	}
	if _, err := x.commitLocked(); err != nil {
		return false, err
	}
	x.logger.Info("genesis applied", "mint", spec.MintAddress().String(), "allocations", len(spec.Allocations))
	return true, nil
}

// Commit persists the state trie and returns the new root.
func (x *Executor) Commit() (common.Hash, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.commitLocked()
}

func (x *Executor) commitLocked() (common.Hash, error) {
	if x.trie.Hash() == x.committedRoot {
		return x.committedRoot, nil
	}
	root, err := x.trie.Commit(x.committedRoot, x.height+1)
	if err != nil {
		if rbErr := x.trie.Rollback(); rbErr != nil {
			x.logger.Error("state rollback failed", "error", rbErr)
		}
		return common.Hash{}, err
	}
	head := &types.CommitHeader{
		Height:     x.height + 1,
		Timestamp:  uint64(x.nowFn()),
		ParentRoot: x.committedRoot,
		StateRoot:  root,
	}
	enc, err := head.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	anchor, err := head.Hash()
	if err != nil {
		return common.Hash{}, err
	}
	if err := x.db.Put(headKey, enc); err != nil {
		return common.Hash{}, err
	}
	x.committedRoot = root
	x.height = head.Height
	x.head = *head
	x.replay.advance(anchor)
	return root, nil
}

// Head returns the newest commit header and its hash. Transactions sign over
// the hash of a recent header.
func (x *Executor) Head() (types.CommitHeader, common.Hash) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.head, x.replay.latest()
}

// Height returns the number of commits recorded so far.
func (x *Executor) Height() uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.height
}

// Root returns the last committed state root.
func (x *Executor) Root() common.Hash {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.committedRoot
}

// Config returns the configuration record and its address.
func (x *Executor) Config() (*bonds.Config, crypto.Address, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.viewEngine.Config()
}

// Owner returns the owner record of wallet.
func (x *Executor) Owner(wallet crypto.Address) (*bonds.OwnerAccount, crypto.Address, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.viewEngine.Owner(wallet)
}

// Position returns the position of wallet at index.
func (x *Executor) Position(wallet crypto.Address, index uint8) (*bonds.BondPosition, crypto.Address, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.viewEngine.Position(wallet, index)
}

// PreviewClaim reports what a claim on the position would settle now.
func (x *Executor) PreviewClaim(wallet crypto.Address, index uint8) (*bonds.ClaimPreview, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.viewEngine.PreviewClaim(wallet, index)
}

// TokenAccount returns the value account at addr or nil when absent.
func (x *Executor) TokenAccount(addr crypto.Address) (*token.Account, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.viewTokens.Account(addr)
}
