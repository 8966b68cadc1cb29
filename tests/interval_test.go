package tests

import (
	"testing"

	"github.com/nspcc-dev/escrow-contract/common"
	"github.com/nspcc-dev/escrow-contract/contracts/escrowconst"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// start makes both parties consent to start streaming and returns the
// height of the block where the stream has started.
func (x escrow) start(t *testing.T) uint32 {
	x.as(x.payer).Invoke(t, stackitem.Null{}, "startContract")
	x.requireStage(t, escrowconst.StageCreated)

	x.as(x.payee).Invoke(t, stackitem.Null{}, "startContract")
	x.requireStage(t, escrowconst.StageActive)

	return x.Chain.BlockHeight()
}

func TestInterval_Deploy(t *testing.T) {
	x := newParties(t)
	c := compileInterval(t, x.Executor)

	x.DeployContractCheckFAULT(t, c,
		[]any{x.payer.ScriptHash(), x.payee.ScriptHash(), int64(0), int64(paymentAmount)},
		"interval must be positive")
	x.DeployContractCheckFAULT(t, c,
		[]any{x.payer.ScriptHash(), x.payee.ScriptHash(), int64(10), int64(-1)},
		"payment amount must be positive")
	x.DeployContractCheckFAULT(t, c,
		[]any{x.payee.ScriptHash(), x.payee.ScriptHash(), int64(10), int64(paymentAmount)},
		common.ErrInvalidTarget)

	x.DeployContract(t, c, []any{x.payer.ScriptHash(), x.payee.ScriptHash(), int64(10), int64(paymentAmount)})
	x.hash = c.Hash

	details := x.details(t)
	usufruct, err := details[2].TryBytes()
	require.NoError(t, err)
	require.Empty(t, usufruct)
	requireInt(t, 10, details[3])
	requireInt(t, paymentAmount, details[4])
	x.requireStage(t, escrowconst.StageCreated)
	x.as(x.payee).Invoke(t, common.Version, "version")
}

func TestInterval_Stream(t *testing.T) {
	x := newInterval(t, 10, 100)
	x.deposit(t, x.payer, 1000, 1000)

	started := x.start(t)
	startedAt, err := x.details(t)[5].TryInteger()
	require.NoError(t, err)

	x.waitElapsed(t, started, 5)

	x.requireBalances(t, 950, 50)
	require.EqualValues(t, 9, x.getInt(t, "getRemainingIntervals"))

	h := x.as(x.payee).Invoke(t, stackitem.Null{}, "withdrawPayment", 50)
	ev := x.requireEvent(t, h, "PaymentSettled")
	requireInt(t, 50, ev[1])
	requireInt(t, startedAt.Int64()+5, ev[2])
	ev = x.requireEvent(t, h, "PaymentWithdrawn")
	requireInt(t, 50, ev[1])
	x.requireGAS(t, 950)

	requireInt(t, startedAt.Int64()+5, x.details(t)[5])

	// One more block has passed since the settlement.
	x.requireBalances(t, 940, 10)
}

func TestInterval_ProRata(t *testing.T) {
	x := newInterval(t, 3, 10)
	x.deposit(t, x.payer, 1000, 1000)

	started := x.start(t)
	x.waitElapsed(t, started, 2)
	x.requireBalances(t, 1000-6, 6)

	x.waitElapsed(t, started, 3)
	x.requireBalances(t, 1000-10, 10)
}

func TestInterval_NoStreamBeforeStart(t *testing.T) {
	x := newInterval(t, 1, 100)
	x.deposit(t, x.payer, 1000, 1000)

	for i := 0; i < 5; i++ {
		x.AddNewBlock(t)
	}
	x.requireBalances(t, 1000, 0)
	require.EqualValues(t, 10, x.getInt(t, "getRemainingIntervals"))

	// Usufruct proposal alone does not start the stream.
	setUsufruct(t, x)
	x.as(x.usufruct).Invoke(t, stackitem.Null{}, "startContract")
	x.requirePending(t, "getPendingStart", false, false, []byte(escrowconst.TargetActive))
	x.requireStage(t, escrowconst.StageCreated)

	x.as(x.payer).Invoke(t, stackitem.Null{}, "startContract")
	x.as(x.payer).Invoke(t, stackitem.Null{}, "rejectStart")
	x.requireNeutral(t, "getPendingStart")
	x.requireStage(t, escrowconst.StageCreated)
	x.requireBalances(t, 1000, 0)

	x.start(t)
	x.as(x.payer).InvokeFail(t, common.ErrInvalidStage, "startContract")
}

// Streamed amount never exceeds Payer balance. Computing it as
// PaymentAmount*elapsed/Interval without the cap would give 500 here with
// only 100 deposited.
func TestInterval_StreamIsCappedByPayerBalance(t *testing.T) {
	x := newInterval(t, 1, 100)
	x.deposit(t, x.payer, 100, 100)

	started := x.start(t)
	x.waitElapsed(t, started, 5)

	x.requireBalances(t, 0, 100)
	require.EqualValues(t, 0, x.getInt(t, "getRemainingIntervals"))

	x.as(x.payee).InvokeFail(t, common.ErrInsufficientFunds, "withdrawPayment", 101)
	x.as(x.payee).Invoke(t, stackitem.Null{}, "withdrawPayment", 100)
	x.requireGAS(t, 0)
	x.requireBalances(t, 0, 0)
}

func TestInterval_PayerWithdraw(t *testing.T) {
	x := newInterval(t, 10, 100)
	x.deposit(t, x.payer, 1000, 1000)

	started := x.start(t)
	x.waitElapsed(t, started, 5)

	x.as(x.payer).InvokeFail(t, common.ErrInsufficientFunds, "withdrawFunds", 951)
	// The failed transaction took one more block, 60 is streamed now.
	x.as(x.payer).Invoke(t, stackitem.Null{}, "withdrawFunds", 940)
	x.requireGAS(t, 60)

	// Withdrawal does not settle, but the stream is limited by what is left.
	x.requireBalances(t, 0, 60)

	x.as(x.payee).Invoke(t, stackitem.Null{}, "withdrawPayment", 60)
	x.requireGAS(t, 0)
	x.requireBalances(t, 0, 0)
}

func TestInterval_Termination(t *testing.T) {
	x := newInterval(t, 10, 100)
	x.deposit(t, x.payer, 1000, 1000)

	started := x.start(t)
	x.as(x.payer).Invoke(t, stackitem.Null{}, "terminateContract")
	x.waitElapsed(t, started, 4)
	x.as(x.payee).Invoke(t, stackitem.Null{}, "terminateContract")
	x.requireStage(t, escrowconst.StageTerminated)

	x.requireBalances(t, 960, 40)
	for i := 0; i < 5; i++ {
		x.AddNewBlock(t)
	}
	x.requireBalances(t, 960, 40)

	_, err := x.CommitteeInvoker(x.hash).TestInvoke(t, "getRemainingIntervals")
	require.ErrorContains(t, err, common.ErrInvalidStage)
	x.as(x.payer).InvokeFail(t, common.ErrInvalidStage, "terminateContract")
	x.as(x.payer).InvokeFail(t, common.ErrInvalidStage, "startContract")

	x.as(x.payer).InvokeFail(t, common.ErrInsufficientFunds, "withdrawFunds", 961)
	x.as(x.payer).Invoke(t, stackitem.Null{}, "withdrawFunds", 960)
	x.as(x.payee).Invoke(t, stackitem.Null{}, "withdrawPayment", 30)
	x.requireBalances(t, 0, 10)
	x.as(x.payee).Invoke(t, stackitem.Null{}, "withdrawPayment", 10)
	x.requireBalances(t, 0, 0)
	x.requireGAS(t, 0)
}

func TestInterval_TerminationBeforeStart(t *testing.T) {
	x := newInterval(t, 1, 100)
	x.deposit(t, x.payer, 300, 300)

	x.as(x.payee).Invoke(t, stackitem.Null{}, "terminateContract")
	x.as(x.payer).Invoke(t, stackitem.Null{}, "terminateContract")
	x.requireStage(t, escrowconst.StageTerminated)

	x.AddNewBlock(t)
	x.requireBalances(t, 300, 0)
	x.as(x.payer).Invoke(t, stackitem.Null{}, "withdrawFunds", 300)
	x.requireGAS(t, 0)
}
