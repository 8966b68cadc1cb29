package approval

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
	usufruct := util.Uint160{3}

	details := func(usufruct []byte) stackitem.Item {
		return stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(payer.BytesBE()),
			stackitem.NewByteArray(payee.BytesBE()),
			stackitem.NewByteArray(usufruct),
			stackitem.Make(100),
		})
	}

	inv := &testInvoker{res: []stackitem.Item{details(nil)}, state: vmstate.Halt}
	r := NewReader(inv, util.Uint160{})

	d, err := r.GetContractDetails()
	require.NoError(t, err)
	require.Equal(t, "getContractDetails", inv.method)
	require.Equal(t, payer, d.Payer)
	require.Equal(t, payee, d.Payee)
	require.Nil(t, d.Usufruct)
	require.EqualValues(t, 100, d.PaymentAmount.Int64())

	inv.res = []stackitem.Item{details(usufruct.BytesBE())}
	d, err = r.GetContractDetails()
	require.NoError(t, err)
	require.NotNil(t, d.Usufruct)
	require.Equal(t, usufruct, *d.Usufruct)

	t.Run("interval details", func(t *testing.T) {
		inv.res = []stackitem.Item{stackitem.NewStruct(make([]stackitem.Item, 7))}
		_, err := r.GetContractDetails()
		require.Error(t, err)
	})

	t.Run("invalid address", func(t *testing.T) {
		item := details(nil).(*stackitem.Struct)
		item.Value().([]stackitem.Item)[0] = stackitem.NewByteArray([]byte{1, 2, 3})
		inv.res = []stackitem.Item{item}
		_, err := r.GetContractDetails()
		require.ErrorContains(t, err, "field Payer")
	})

	t.Run("fault", func(t *testing.T) {
		inv.res, inv.state = nil, vmstate.Fault
		_, err := r.GetContractDetails()
		require.Error(t, err)
	})
}

func TestContractReader_GetPendingPayout(t *testing.T) {
	inv := &testInvoker{state: vmstate.Halt, res: []stackitem.Item{stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBool(false),
		stackitem.NewBool(true),
		stackitem.NewByteArray([]byte("active")),
	})}}

	p, err := NewReader(inv, util.Uint160{}).GetPendingPayout()
	require.NoError(t, err)
	require.Equal(t, "getPendingPayout", inv.method)
	require.False(t, p.PayerConsented)
	require.True(t, p.PayeeConsented)
	require.Equal(t, []byte("active"), p.Target)
}

func TestStageName(t *testing.T) {
	require.Equal(t, "Created", StageName(escrow.StageCreated))
	require.Equal(t, "Approved", StageName(escrow.StageActive))
	require.Equal(t, "Terminated", StageName(escrow.StageTerminated))
}
