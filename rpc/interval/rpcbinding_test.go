package interval

import (
	"testing"

	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testInvoker struct {
	method string
	res    []stackitem.Item
	state  vmstate.State
}

func (i *testInvoker) Call(_ util.Uint160, method string, _ ...any) (*result.Invoke, error) {
	i.method = method
	return &result.Invoke{State: i.state.String(), Stack: i.res}, nil
}

func TestContractReader_GetContractDetails(t *testing.T) {
	payer := util.Uint160{1}
	payee := util.Uint160{2}

	inv := &testInvoker{state: vmstate.Halt, res: []stackitem.Item{stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(payer.BytesBE()),
		stackitem.NewByteArray(payee.BytesBE()),
		stackitem.NewByteArray(nil),
		stackitem.Make(10),
		stackitem.Make(100),
		stackitem.Make(42),
		stackitem.Make(0),
	})}}
	r := NewReader(inv, util.Uint160{})

	d, err := r.GetContractDetails()
	require.NoError(t, err)
	require.Equal(t, "getContractDetails", inv.method)
	require.Equal(t, payer, d.Payer)
	require.Equal(t, payee, d.Payee)
	require.Nil(t, d.Usufruct)
	require.EqualValues(t, 10, d.Interval.Int64())
	require.EqualValues(t, 100, d.PaymentAmount.Int64())
	require.EqualValues(t, 42, d.LastSettlement.Int64())
	require.EqualValues(t, 0, d.TerminatedAt.Int64())

	t.Run("approval details", func(t *testing.T) {
		inv.res = []stackitem.Item{stackitem.NewStruct(make([]stackitem.Item, 4))}
		_, err := r.GetContractDetails()
		require.Error(t, err)
	})

	t.Run("invalid interval", func(t *testing.T) {
		inv.res = []stackitem.Item{stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(payer.BytesBE()),
			stackitem.NewByteArray(payee.BytesBE()),
			stackitem.NewByteArray(nil),
			stackitem.NewArray(nil),
			stackitem.Make(100),
			stackitem.Make(42),
			stackitem.Make(0),
		})}
		_, err := r.GetContractDetails()
		require.ErrorContains(t, err, "field Interval")
	})
}

func TestContractReader_GetRemainingIntervals(t *testing.T) {
	inv := &testInvoker{state: vmstate.Halt, res: []stackitem.Item{stackitem.Make(9)}}
	r := NewReader(inv, util.Uint160{})

	n, err := r.GetRemainingIntervals()
	require.NoError(t, err)
	require.Equal(t, "getRemainingIntervals", inv.method)
	require.EqualValues(t, 9, n.Int64())

	inv.res, inv.state = nil, vmstate.Fault
	_, err = r.GetRemainingIntervals()
	require.Error(t, err)
}

func TestContractReader_GetPendingStart(t *testing.T) {
	inv := &testInvoker{state: vmstate.Halt, res: []stackitem.Item{stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBool(false),
		stackitem.NewBool(false),
		stackitem.NewByteArray(nil),
	})}}

	p, err := NewReader(inv, util.Uint160{}).GetPendingStart()
	require.NoError(t, err)
	require.Equal(t, "getPendingStart", inv.method)
	require.True(t, p.IsNeutral())
}

func TestStageName(t *testing.T) {
	require.Equal(t, "Created", StageName(escrow.StageCreated))
	require.Equal(t, "InProgress", StageName(escrow.StageActive))
	require.Equal(t, "Terminated", StageName(escrow.StageTerminated))
}
