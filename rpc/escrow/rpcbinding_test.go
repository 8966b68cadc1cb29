package escrow

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/escrow-contract/contracts"
	"github.com/nspcc-dev/escrow-contract/contracts/escrowconst"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

// testInvoker returns prepared stack for every call and remembers the method.
type testInvoker struct {
	method string
	res    []stackitem.Item
	state  vmstate.State
}

func (i *testInvoker) Call(_ util.Uint160, method string, _ ...any) (*result.Invoke, error) {
	i.method = method
	return &result.Invoke{State: i.state.String(), Stack: i.res}, nil
}

func halt(items ...stackitem.Item) *testInvoker {
	return &testInvoker{res: items, state: vmstate.Halt}
}

func TestContractReader_Pending(t *testing.T) {
	target := util.Uint160{1, 2, 3}

	inv := halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBool(true),
		stackitem.NewBool(false),
		stackitem.NewByteArray(target.BytesBE()),
	}))
	r := NewReader(inv, util.Uint160{})

	p, err := r.GetPendingPayerUpdate()
	require.NoError(t, err)
	require.Equal(t, "getPendingPayerUpdate", inv.method)
	require.True(t, p.PayerConsented)
	require.False(t, p.PayeeConsented)
	require.False(t, p.IsNeutral())

	addr, err := p.TargetAddress()
	require.NoError(t, err)
	require.Equal(t, target, addr)

	inv.res = []stackitem.Item{stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBool(false),
		stackitem.NewBool(false),
		stackitem.NewByteArray(nil),
	})}
	p, err = r.GetPendingTermination()
	require.NoError(t, err)
	require.True(t, p.IsNeutral())

	inv.res = []stackitem.Item{stackitem.NewStruct([]stackitem.Item{stackitem.NewBool(false)})}
	_, err = r.GetPendingUsufructUpdate()
	require.Error(t, err)
}

func TestContractReader_Stage(t *testing.T) {
	inv := halt(stackitem.Make(escrowconst.StageTerminated))
	r := NewReader(inv, util.Uint160{})

	s, err := r.GetContractState()
	require.NoError(t, err)
	require.Equal(t, StageTerminated, s)
	require.Equal(t, "Terminated", s.String())

	inv.state = vmstate.Fault
	_, err = r.GetContractState()
	require.Error(t, err)
}

func TestOptionalUint160FromStackItem(t *testing.T) {
	u, err := OptionalUint160FromStackItem(stackitem.NewByteArray([]byte{}))
	require.NoError(t, err)
	require.Nil(t, u)

	addr := util.Uint160{0xff}
	u, err = OptionalUint160FromStackItem(stackitem.NewByteArray(addr.BytesBE()))
	require.NoError(t, err)
	require.Equal(t, addr, *u)

	_, err = OptionalUint160FromStackItem(stackitem.NewByteArray([]byte{1}))
	require.Error(t, err)
}

func TestEventsFromApplicationLog(t *testing.T) {
	payer := util.Uint160{9}
	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{
					Name: "FundsDeposited",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.NewByteArray(payer.BytesBE()),
						stackitem.Make(100),
					}),
				},
				{
					Name: "UpdateRequested",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(escrowconst.KindTermination),
						stackitem.Make(escrowconst.TargetTerminated),
						stackitem.NewBool(false),
						stackitem.NewBool(true),
					}),
				},
				{
					Name: "StageChanged",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.Make(escrowconst.StageActive)}),
				},
			},
		}},
	}

	deposits, err := FundsDepositedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, payer, deposits[0].Payer)
	require.Zero(t, deposits[0].Amount.Cmp(big.NewInt(100)))

	requests, err := UpdateRequestedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, escrowconst.KindTermination, requests[0].Kind)
	require.Equal(t, []byte(escrowconst.TargetTerminated), requests[0].Target)
	require.False(t, requests[0].PayerConsented)
	require.True(t, requests[0].PayeeConsented)

	stages, err := StageChangedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	require.Equal(t, StageActive, stages[0].Stage)

	withdrawals, err := FundsWithdrawnEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, withdrawals)

	_, err = PartyUpdatedEventsFromApplicationLog(nil)
	require.Error(t, err)

	log.Executions[0].Events[0].Name = "StageChanged"
	_, err = StageChangedEventsFromApplicationLog(log)
	require.Error(t, err)
}

type stateGetter map[util.Uint160]string

func (g stateGetter) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	name, ok := g[h]
	if !ok {
		return nil, errors.New("Unknown contract")
	}
	return &state.Contract{ContractBase: state.ContractBase{Hash: h, Manifest: *manifest.NewManifest(name)}}, nil
}

func TestInferVariant(t *testing.T) {
	g := stateGetter{
		{1}: ApprovalName + " 3mJr7AoUXx2Wqd",
		{2}: IntervalName + " 9gYbLKiC1zTHAJ",
		{3}: "NameService",
	}

	v, err := InferVariant(g, util.Uint160{1})
	require.NoError(t, err)
	require.Equal(t, contracts.Approval, v)

	v, err = InferVariant(g, util.Uint160{2})
	require.NoError(t, err)
	require.Equal(t, contracts.Interval, v)

	_, err = InferVariant(g, util.Uint160{3})
	require.ErrorIs(t, err, ErrNotEscrow)

	_, err = InferVariant(g, util.Uint160{4})
	require.Error(t, err)
}
