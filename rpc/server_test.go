package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/WillShirley13/testudo-bonds/core"
	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/core/genesis"
	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
	nativecommon "github.com/WillShirley13/testudo-bonds/native/common"
	"github.com/WillShirley13/testudo-bonds/storage"
)

const unit = bonds.DefaultBaseUnit

type testNode struct {
	t       *testing.T
	exec    *core.Executor
	server  *httptest.Server
	client  *Client
	program crypto.Address
	mint    crypto.Address
	now     int64

	authority, treasury, team, wallet *crypto.PrivateKey
}

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return key
}

func newTestNode(t *testing.T, quota nativecommon.Quota) *testNode {
	t.Helper()
	n := &testNode{
		t:         t,
		program:   mustKey(t).Address(),
		mint:      mustKey(t).Address(),
		authority: mustKey(t),
		treasury:  mustKey(t),
		team:      mustKey(t),
		wallet:    mustKey(t),
		now:       1_700_000_000,
	}
	exec, err := core.NewExecutor(storage.NewMemDB(), nil, bonds.DefaultParams(n.program))
	require.NoError(t, err)
	exec.SetNowFunc(func() int64 { return n.now })
	recorder := events.NewRecorder(64)
	exec.SetEmitter(recorder)
	_, err = exec.ApplyGenesis(&genesis.Spec{
		Mint:          n.mint.String(),
		MintAuthority: n.authority.Address().String(),
		Decimals:      bonds.DefaultDecimals,
		Allocations:   []genesis.AllocationSpec{{Owner: n.wallet.Address().String(), Amount: 25 * unit}},
	})
	require.NoError(t, err)
	n.exec = exec

	srv := New(Config{
		Backend:        exec,
		Quota:          quota,
		Events:         recorder,
		MetricsHandler: http.NotFoundHandler(),
		Now:            func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
	n.server = httptest.NewServer(srv.Handler())
	t.Cleanup(n.server.Close)
	n.client = NewClient(n.server.URL, n.server.Client())
	return n
}

func (n *testNode) sign(ins bonds.Instruction, signers ...*crypto.PrivateKey) *types.Transaction {
	n.t.Helper()
	data, err := bonds.Encode(ins)
	require.NoError(n.t, err)
	head, err := n.client.Head(context.Background())
	require.NoError(n.t, err)
	tx := &types.Transaction{RecentCommit: head.Hash, Instruction: data, Accounts: ins.Accounts()}
	for _, key := range signers {
		require.NoError(n.t, tx.Sign(key))
	}
	return tx
}

func (n *testNode) submit(ins bonds.Instruction, signers ...*crypto.PrivateKey) (*SubmitResult, error) {
	n.t.Helper()
	return n.client.Submit(context.Background(), n.sign(ins, signers...))
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr), "error %v", err)
	require.Equal(t, status, rpcErr.Status)
}

func (n *testNode) initialize() {
	n.t.Helper()
	op, err := bonds.BuildInitializeConfig(n.program, n.authority.Address(), n.treasury.Address(), n.team.Address(), n.mint)
	require.NoError(n.t, err)
	res, err := n.submit(op, n.authority, n.treasury, n.team)
	require.NoError(n.t, err)
	require.True(n.t, res.OK)
	require.NotEmpty(n.t, res.Root)
}

func TestSubmitAndQuery(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{})
	ctx := context.Background()
	n.initialize()

	openOwner, err := bonds.BuildOpenOwner(n.program, n.wallet.Address())
	require.NoError(t, err)
	_, err = n.submit(openOwner, n.wallet)
	require.NoError(t, err)

	cfgView, err := n.client.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, n.authority.Address(), cfgView.Config.Authority)
	require.Equal(t, uint8(10), cfgView.Config.MaxBondsPerWallet)

	ownerView, err := n.client.Owner(ctx, n.wallet.Address())
	require.NoError(t, err)
	openBond, err := bonds.BuildOpenBond(n.program, n.wallet.Address(), ownerView.Owner, cfgView.Config)
	require.NoError(t, err)
	res, err := n.submit(openBond, n.wallet)
	require.NoError(t, err)
	require.Equal(t, "open_bond", res.Kind)
	require.NotEmpty(t, res.Events)

	posView, err := n.client.Position(ctx, n.wallet.Address(), 0)
	require.NoError(t, err)
	require.True(t, posView.Position.Active)
	require.Equal(t, ownerView.Address, posView.Position.Owner)

	ownerView, err = n.client.Owner(ctx, n.wallet.Address())
	require.NoError(t, err)
	require.True(t, ownerView.Owner.ActiveBonds.Contains(0))
	require.Equal(t, uint8(1), ownerView.Owner.NextBondIndex)

	balance, err := n.client.Balance(ctx, cfgView.Config.RewardsPool)
	require.NoError(t, err)
	require.Equal(t, 4*unit, balance.Amount)
	require.Equal(t, cfgView.Address, balance.Owner)

	_, err = n.client.Preview(ctx, n.wallet.Address(), 0)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, int(bonds.CodeNoRewardsToClaim), rpcErr.Code)

	n.now += int64(bonds.SecondsPerDay)
	preview, err := n.client.Preview(ctx, n.wallet.Address(), 0)
	require.NoError(t, err)
	require.True(t, preview.Accrual.Penalized)
	require.Equal(t, uint64(52_250_000), preview.Accrual.Reward)
	require.True(t, preview.PoolCovers)

	resp, err := http.Get(n.server.URL + "/events?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLedgerErrorsCarryCodes(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{})
	n.initialize()

	op, err := bonds.BuildInitializeConfig(n.program, n.authority.Address(), n.treasury.Address(), n.team.Address(), n.mint)
	require.NoError(t, err)
	_, err = n.submit(op, n.authority, n.treasury, n.team)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusUnprocessableEntity, rpcErr.Status)
	require.Equal(t, int(bonds.CodeExpectedEmptyAccount), rpcErr.Code)

	_, err = n.submit(op, n.authority)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusBadRequest, rpcErr.Status)
	require.Equal(t, -1, rpcErr.Code)
}

func TestQueryErrors(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{})
	ctx := context.Background()

	_, err := n.client.Config(ctx)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusNotFound, rpcErr.Status)

	resp, err := http.Get(n.server.URL + "/owners/not-an-address")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(n.server.URL + "/owners/" + n.wallet.Address().String() + "/bonds/300")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(n.server.URL+"/tx", "application/json", strings.NewReader(`{"bogus":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(n.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmissionQuota(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{MaxRequestsPerWindow: 1, WindowSeconds: 60})

	first, err := bonds.BuildOpenOwner(n.program, n.wallet.Address())
	require.NoError(t, err)
	_, err = n.submit(first, n.wallet)
	require.NoError(t, err)

	_, err = n.submit(first, n.wallet)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusTooManyRequests, rpcErr.Status)

	other := mustKey(t)
	second, err := bonds.BuildOpenOwner(n.program, other.Address())
	require.NoError(t, err)
	_, err = n.submit(second, other)
	require.NoError(t, err)
}

func TestForgedSignatureDoesNotChargeQuota(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{MaxRequestsPerWindow: 1, WindowSeconds: 60})
	op, err := bonds.BuildOpenOwner(n.program, n.wallet.Address())
	require.NoError(t, err)

	forged := n.sign(op, n.wallet)
	forged.Signatures[0].Signature[0] ^= 0xff
	_, err = n.client.Submit(context.Background(), forged)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = n.submit(op, n.wallet)
	require.NoError(t, err)
}

func TestReplayedSubmissionConflicts(t *testing.T) {
	n := newTestNode(t, nativecommon.Quota{})
	n.initialize()
	op, err := bonds.BuildOpenOwner(n.program, n.wallet.Address())
	require.NoError(t, err)

	tx := n.sign(op, n.wallet)
	_, err = n.client.Submit(context.Background(), tx)
	require.NoError(t, err)
	_, err = n.client.Submit(context.Background(), tx)
	requireStatus(t, err, http.StatusConflict)

	head, err := n.client.Head(context.Background())
	require.NoError(t, err)
	require.Equal(t, n.exec.Height(), head.Height)
	require.Equal(t, n.exec.Root(), head.StateRoot)
}

func TestSubmitRequestRoundTrip(t *testing.T) {
	key := mustKey(t)
	tx := &types.Transaction{
		RecentCommit: common.Hash{3},
		Instruction:  []byte{1},
		Accounts:     []types.AccountMeta{types.NewMeta(key.Address(), true, true)},
	}
	require.NoError(t, tx.Sign(key))

	back, err := NewSubmitRequest(tx).Transaction()
	require.NoError(t, err)
	require.Equal(t, tx.RecentCommit, back.RecentCommit)
	require.Equal(t, tx.Instruction, back.Instruction)
	require.Equal(t, tx.Signatures, back.Signatures)
	signed, err := back.VerifySignatures()
	require.NoError(t, err)
	require.True(t, signed[key.Address()])
}
