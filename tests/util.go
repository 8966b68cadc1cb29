package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	approvalPath = "../contracts/approval"
	intervalPath = "../contracts/interval"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// escrow is a deployed escrow contract with its parties. Usufruct account
// exists from the start, but it is not set in the contract.
type escrow struct {
	*neotest.Executor

	hash     util.Uint160
	payer    neotest.Signer
	payee    neotest.Signer
	usufruct neotest.Signer
}

func newParties(t *testing.T) escrow {
	e := newExecutor(t)
	return escrow{
		Executor: e,
		payer:    e.NewAccount(t),
		payee:    e.NewAccount(t),
		usufruct: e.NewAccount(t),
	}
}

func compileApproval(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, approvalPath, path.Join(approvalPath, "config.yml"))
}

func compileInterval(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, intervalPath, path.Join(intervalPath, "config.yml"))
}

func newApproval(t *testing.T, paymentAmount int64) escrow {
	x := newParties(t)
	c := compileApproval(t, x.Executor)
	x.DeployContract(t, c, []any{x.payer.ScriptHash(), x.payee.ScriptHash(), paymentAmount})
	x.hash = c.Hash
	return x
}

func newInterval(t *testing.T, interval, paymentAmount int64) escrow {
	x := newParties(t)
	c := compileInterval(t, x.Executor)
	x.DeployContract(t, c, []any{x.payer.ScriptHash(), x.payee.ScriptHash(), interval, paymentAmount})
	x.hash = c.Hash
	return x
}

// as returns invoker of the escrow contract signed by s.
func (x escrow) as(s neotest.Signer) *neotest.ContractInvoker {
	return x.NewInvoker(x.hash, s)
}

// deposit sends amount of GAS from the sender to the escrow declaring
// the given amount.
func (x escrow) deposit(t *testing.T, from neotest.Signer, amount int64, declared any) util.Uint256 {
	return x.NewInvoker(x.NativeHash(t, nativenames.Gas), from).
		Invoke(t, true, "transfer", from.ScriptHash(), x.hash, amount, declared)
}

func (x escrow) depositFail(t *testing.T, from neotest.Signer, amount int64, declared any, msg string) {
	x.NewInvoker(x.NativeHash(t, nativenames.Gas), from).
		InvokeFail(t, msg, "transfer", from.ScriptHash(), x.hash, amount, declared)
}

func (x escrow) call(t *testing.T, method string, args ...any) stackitem.Item {
	s, err := x.CommitteeInvoker(x.hash).TestInvoke(t, method, args...)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	return s.Pop().Item()
}

func (x escrow) getInt(t *testing.T, method string) int64 {
	v, err := x.call(t, method).TryInteger()
	require.NoError(t, err)
	return v.Int64()
}

func (x escrow) requireBalances(t *testing.T, payer, payee int64) {
	require.EqualValues(t, payer, x.getInt(t, "getPayerBalance"), "payer balance")
	require.EqualValues(t, payee, x.getInt(t, "getPayeeBalance"), "payee balance")
}

func (x escrow) requireStage(t *testing.T, stage int64) {
	require.EqualValues(t, stage, x.getInt(t, "getContractState"))
}

func (x escrow) requireGAS(t *testing.T, amount int64) {
	x.CheckGASBalance(t, x.hash, big.NewInt(amount))
}

// pending is a decoded pending authorization record.
type pending struct {
	payer  bool
	payee  bool
	target []byte
}

func (x escrow) pending(t *testing.T, method string) pending {
	arr, ok := x.call(t, method).Value().([]stackitem.Item)
	require.True(t, ok)
	require.Len(t, arr, 3)

	var (
		p   pending
		err error
	)
	p.payer, err = arr[0].TryBool()
	require.NoError(t, err)
	p.payee, err = arr[1].TryBool()
	require.NoError(t, err)
	p.target, err = arr[2].TryBytes()
	require.NoError(t, err)
	return p
}

func (x escrow) requirePending(t *testing.T, method string, payer, payee bool, target []byte) {
	p := x.pending(t, method)
	require.Equal(t, payer, p.payer, "payer consent")
	require.Equal(t, payee, p.payee, "payee consent")
	require.Equal(t, target, p.target, "target")
}

func (x escrow) requireNeutral(t *testing.T, method string) {
	p := x.pending(t, method)
	require.False(t, p.payer)
	require.False(t, p.payee)
	require.Empty(t, p.target)
}

// details returns fields of getContractDetails result.
func (x escrow) details(t *testing.T) []stackitem.Item {
	arr, ok := x.call(t, "getContractDetails").Value().([]stackitem.Item)
	require.True(t, ok)
	return arr
}

func (x escrow) requireParty(t *testing.T, index int, expected util.Uint160) {
	b, err := x.details(t)[index].TryBytes()
	require.NoError(t, err)
	require.Equal(t, expected.BytesBE(), b)
}

// requireEvent checks that transaction h has emitted the notification and
// returns its parameters.
func (x escrow) requireEvent(t *testing.T, h util.Uint256, name string) []stackitem.Item {
	res := x.GetTxExecResult(t, h)
	for _, ev := range res.Events {
		if ev.Name == name {
			require.Equal(t, x.hash, ev.ScriptHash)
			return ev.Item.Value().([]stackitem.Item)
		}
	}
	require.Failf(t, "missing notification", "%s is not emitted", name)
	return nil
}

func (x escrow) requireNoEvent(t *testing.T, h util.Uint256, name string) {
	res := x.GetTxExecResult(t, h)
	for _, ev := range res.Events {
		require.NotEqual(t, name, ev.Name)
	}
}

// waitElapsed adds blocks so that the next transaction sees n blocks passed
// since the transaction accepted at height from.
func (x escrow) waitElapsed(t *testing.T, from uint32, n uint32) {
	require.LessOrEqual(t, x.Chain.BlockHeight()+1, from+n, "too many blocks already")
	for x.Chain.BlockHeight()+1 < from+n {
		x.AddNewBlock(t)
	}
}

func requireInt(t *testing.T, expected int64, item stackitem.Item) {
	v, err := item.TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, expected, v.Int64())
}
