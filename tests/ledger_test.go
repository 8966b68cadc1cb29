package tests

import (
	"testing"

	"github.com/nspcc-dev/escrow-contract/common"
	"github.com/nspcc-dev/escrow-contract/contracts/escrowconst"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// Party updates behave the same in both escrow variants.
var variants = []struct {
	name string
	new  func(t *testing.T) escrow
}{
	{"approval", func(t *testing.T) escrow { return newApproval(t, paymentAmount) }},
	{"interval", func(t *testing.T) escrow { return newInterval(t, 10, paymentAmount) }},
}

func forEachVariant(t *testing.T, f func(t *testing.T, x escrow)) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			f(t, v.new(t))
		})
	}
}

func setUsufruct(t *testing.T, x escrow) {
	addr := x.usufruct.ScriptHash()
	x.as(x.payer).Invoke(t, stackitem.Null{}, "requestUsufructUpdate", addr)
	x.as(x.payee).Invoke(t, stackitem.Null{}, "requestUsufructUpdate", addr)
	x.requireParty(t, 2, addr)
}

func TestPayerUpdate(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		newPayer := x.NewAccount(t)
		other := randomAddress()

		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestPayerUpdate", other)
		x.requirePending(t, "getPendingPayerUpdate", true, false, other.BytesBE())

		// Different target restarts the round.
		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestPayerUpdate", newPayer.ScriptHash())
		x.requirePending(t, "getPendingPayerUpdate", false, true, newPayer.ScriptHash().BytesBE())
		x.requireParty(t, 0, x.payer.ScriptHash())

		h := x.as(x.payer).Invoke(t, stackitem.Null{}, "requestPayerUpdate", newPayer.ScriptHash())
		x.requireEvent(t, h, "UpdateAuthorized")
		ev := x.requireEvent(t, h, "PartyUpdated")
		kind, err := ev[0].TryBytes()
		require.NoError(t, err)
		require.Equal(t, escrowconst.KindPayer, string(kind))

		x.requireParty(t, 0, newPayer.ScriptHash())
		x.requireNeutral(t, "getPendingPayerUpdate")

		x.depositFail(t, x.payer, 10, 10, common.ErrUnauthorized)
		x.as(x.payer).InvokeFail(t, common.ErrUnauthorized, "withdrawFunds", 0)

		x.deposit(t, newPayer, 10, 10)
		x.requireBalances(t, 10, 0)
	})
}

func TestPayeeUpdate(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		newPayee := x.NewAccount(t)

		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestPayeeUpdate", newPayee.ScriptHash())
		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestPayeeUpdate", newPayee.ScriptHash())
		x.requirePending(t, "getPendingPayeeUpdate", false, true, newPayee.ScriptHash().BytesBE())

		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestPayeeUpdate", newPayee.ScriptHash())
		x.requireParty(t, 1, newPayee.ScriptHash())

		x.as(x.payee).InvokeFail(t, common.ErrUnauthorized, "withdrawPayment", 0)
		x.as(newPayee).Invoke(t, stackitem.Null{}, "withdrawPayment", 0)
	})
}

func TestRejectUpdate(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		target := randomAddress()
		stale := randomAddress()

		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestPayerUpdate", target)

		h := x.as(x.payee).Invoke(t, stackitem.Null{}, "rejectPayerUpdate", stale)
		x.requireNoEvent(t, h, "UpdateRejected")
		x.requirePending(t, "getPendingPayerUpdate", true, false, target.BytesBE())

		h = x.as(x.payee).Invoke(t, stackitem.Null{}, "rejectPayerUpdate", target)
		x.requireEvent(t, h, "UpdateRejected")
		x.requireNeutral(t, "getPendingPayerUpdate")

		// Consents of the rejected round are gone.
		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestPayerUpdate", target)
		x.requirePending(t, "getPendingPayerUpdate", false, true, target.BytesBE())
		x.requireParty(t, 0, x.payer.ScriptHash())

		// Nothing pending, nothing to reject.
		x.as(x.payer).Invoke(t, stackitem.Null{}, "rejectUsufructUpdate", target)
		x.requireNeutral(t, "getPendingUsufructUpdate")
	})
}

func TestIndependentRecords(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		newPayer, newPayee, usufruct := randomAddress(), randomAddress(), randomAddress()

		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestPayerUpdate", newPayer)
		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestPayeeUpdate", newPayee)
		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestUsufructUpdate", usufruct)
		x.as(x.payer).Invoke(t, stackitem.Null{}, "terminateContract")

		x.requirePending(t, "getPendingPayerUpdate", true, false, newPayer.BytesBE())
		x.requirePending(t, "getPendingPayeeUpdate", false, true, newPayee.BytesBE())
		x.requirePending(t, "getPendingUsufructUpdate", true, false, usufruct.BytesBE())
		x.requirePending(t, "getPendingTermination", true, false, []byte(escrowconst.TargetTerminated))

		x.as(x.payee).Invoke(t, stackitem.Null{}, "rejectPayeeUpdate", newPayee)
		x.requireNeutral(t, "getPendingPayeeUpdate")
		x.requirePending(t, "getPendingPayerUpdate", true, false, newPayer.BytesBE())
		x.requirePending(t, "getPendingUsufructUpdate", true, false, usufruct.BytesBE())
		x.requireStage(t, escrowconst.StageCreated)
	})
}

func TestUsufruct(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		setUsufruct(t, x)

		usufruct := x.as(x.usufruct)
		target := randomAddress()

		usufruct.InvokeFail(t, common.ErrUnauthorized, "requestPayerUpdate", target)
		usufruct.InvokeFail(t, common.ErrUnauthorized, "requestPayeeUpdate", target)

		// Usufruct starts a round but never consents.
		usufruct.Invoke(t, stackitem.Null{}, "requestUsufructUpdate", target)
		usufruct.Invoke(t, stackitem.Null{}, "requestUsufructUpdate", target)
		x.requirePending(t, "getPendingUsufructUpdate", false, false, target.BytesBE())
		usufruct.InvokeFail(t, common.ErrUnauthorized, "rejectUsufructUpdate", target)

		usufruct.Invoke(t, stackitem.Null{}, "terminateContract")
		x.requirePending(t, "getPendingTermination", false, false, []byte(escrowconst.TargetTerminated))
		x.as(x.payer).Invoke(t, stackitem.Null{}, "terminateContract")
		x.requireStage(t, escrowconst.StageCreated)

		// Usufruct can replace itself with consent of both parties.
		x.as(x.payer).Invoke(t, stackitem.Null{}, "requestUsufructUpdate", target)
		x.as(x.payee).Invoke(t, stackitem.Null{}, "requestUsufructUpdate", target)
		x.requireParty(t, 2, target)
		usufruct.InvokeFail(t, common.ErrUnauthorized, "terminateContract")
	})
}

func TestInvalidTarget(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		setUsufruct(t, x)

		for _, tc := range []struct {
			name   string
			method string
			addr   any
		}{
			{"payer to payee", "requestPayerUpdate", x.payee.ScriptHash()},
			{"payer to usufruct", "requestPayerUpdate", x.usufruct.ScriptHash()},
			{"payee to payer", "requestPayeeUpdate", x.payer.ScriptHash()},
			{"usufruct to payee", "requestUsufructUpdate", x.payee.ScriptHash()},
			{"zero address", "requestPayeeUpdate", util.Uint160{}},
			{"contract address", "requestPayerUpdate", x.hash},
			{"short address", "requestUsufructUpdate", []byte{1, 2, 3}},
			{"empty address", "requestUsufructUpdate", []byte{}},
		} {
			t.Run(tc.name, func(t *testing.T) {
				x.as(x.payer).InvokeFail(t, common.ErrInvalidTarget, tc.method, tc.addr)
			})
		}
	})
}

func TestUnauthorized(t *testing.T) {
	forEachVariant(t, func(t *testing.T, x escrow) {
		stranger := x.as(x.NewAccount(t))
		addr := randomAddress()

		for _, method := range []string{"terminateContract", "rejectTermination"} {
			stranger.InvokeFail(t, common.ErrUnauthorized, method)
		}
		for _, method := range []string{
			"requestPayerUpdate", "rejectPayerUpdate",
			"requestPayeeUpdate", "rejectPayeeUpdate",
			"requestUsufructUpdate", "rejectUsufructUpdate",
		} {
			stranger.InvokeFail(t, common.ErrUnauthorized, method, addr)
		}
		stranger.InvokeFail(t, common.ErrUnauthorized, "withdrawFunds", 0)
		stranger.InvokeFail(t, common.ErrUnauthorized, "withdrawPayment", 0)
	})
}
