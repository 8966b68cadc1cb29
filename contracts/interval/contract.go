package interval

import (
	"github.com/nspcc-dev/escrow-contract/common"
	"github.com/nspcc-dev/escrow-contract/contracts/escrowconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/ledger"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// State is the whole escrow state, stored serialized under a single key.
	State struct {
		Stage         int
		Payer         interop.Hash160
		Payee         interop.Hash160
		Usufruct      interop.Hash160
		Interval      int
		PaymentAmount int
		PayerBalance  int
		PayeeBalance  int
		// Block index up to which the stream is moved to Payee balance.
		LastSettlement int
		// Block index at which the stream stopped, valid in Terminated stage.
		TerminatedAt int
	}

	// Details is a read-only snapshot of escrow parties and payment terms.
	Details struct {
		Payer          interop.Hash160
		Payee          interop.Hash160
		Usufruct       interop.Hash160
		Interval       int
		PaymentAmount  int
		LastSettlement int
		TerminatedAt   int
	}
)

const stateKey = "state"

// _deploy stores escrow parties and payment terms.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		payer         interop.Hash160
		payee         interop.Hash160
		interval      int
		paymentAmount int
	})

	common.CheckParties(common.Parties{Payer: args.payer, Payee: args.payee, Usufruct: interop.Hash160([]byte{})})
	if args.interval <= 0 {
		panic("interval must be positive")
	}
	if args.paymentAmount <= 0 {
		panic("payment amount must be positive")
	}

	putState(ctx, State{
		Stage:          escrowconst.StageCreated,
		Payer:          args.payer,
		Payee:          args.payee,
		Usufruct:       interop.Hash160([]byte{}),
		Interval:       args.interval,
		PaymentAmount:  args.paymentAmount,
		LastSettlement: ledger.CurrentIndex(),
	})

	runtime.Log("interval escrow contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	common.CheckUpdateAccess()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("interval escrow contract updated")
}

// OnNEP17Payment is a callback for native GAS contract. It is the only way
// to deposit funds: the payment must come from Payer and carry the deposited
// amount as data. Payments without declared amount are rejected.
//
// Produces FundsDeposited notification.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	common.CheckGASPayment()
	if data == nil {
		panic(common.ErrUnsolicitedPayment)
	}

	ctx := storage.GetContext()
	s := getState(ctx)

	if !from.Equals(s.Payer) {
		panic(common.ErrUnauthorized)
	}
	if data.(int) != amount {
		panic(common.ErrValueMismatch)
	}
	common.CheckAmount(amount)

	s.PayerBalance += amount
	putState(ctx, s)

	runtime.Notify("FundsDeposited", from, amount)
}

// WithdrawFunds transfers amount of GAS from Payer balance back to Payer.
// Funds already streamed to Payee can't be withdrawn. It can be invoked only
// by Payer.
//
// Produces FundsWithdrawn notification.
func WithdrawFunds(amount int) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.CheckPayer(parties(s))
	common.CheckAmount(amount)

	available := s.PayerBalance - unallocated(s, ledger.CurrentIndex())
	common.Sub(available, amount)

	s.PayerBalance -= amount
	putState(ctx, s)

	common.Payout(s.Payer, amount)
	runtime.Notify("FundsWithdrawn", s.Payer, amount)
}

// WithdrawPayment settles the stream accumulated since the last settlement
// and transfers amount of GAS from Payee balance to Payee. It can be invoked
// only by Payee.
//
// Produces PaymentSettled and PaymentWithdrawn notifications.
func WithdrawPayment(amount int) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.CheckPayee(parties(s))
	common.CheckAmount(amount)

	now := ledger.CurrentIndex()
	unsettled := unallocated(s, now)

	s.PayeeBalance = common.Sub(s.PayeeBalance+unsettled, amount)
	s.PayerBalance = common.Sub(s.PayerBalance, unsettled)
	if s.Stage == escrowconst.StageActive {
		s.LastSettlement = now
	}
	if s.Stage == escrowconst.StageTerminated {
		s.LastSettlement = s.TerminatedAt
	}
	putState(ctx, s)

	if unsettled > 0 {
		runtime.Notify("PaymentSettled", s.Payee, unsettled, s.LastSettlement)
	}

	common.Payout(s.Payee, amount)
	runtime.Notify("PaymentWithdrawn", s.Payee, amount)
}

// StartContract registers consent to start streaming. Payer and Payee
// consents are counted, Usufruct may only start the proposal. When both
// parties have agreed, the contract becomes InProgress and the stream starts
// from the current block.
//
// Produces UpdateRequested or UpdateAuthorized and StageChanged notifications.
func StartContract() {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeAny(parties(s))
	if s.Stage != escrowconst.StageCreated {
		panic(common.ErrInvalidStage)
	}

	if !common.Propose(ctx, escrowconst.KindActivation, role, []byte(escrowconst.TargetActive)) {
		return
	}

	s.LastSettlement = ledger.CurrentIndex()
	s.Stage = escrowconst.StageActive
	putState(ctx, s)

	runtime.Notify("StageChanged", s.Stage)
}

// RejectStart withdraws the pending start. It can be invoked by Payer or
// Payee.
func RejectStart() {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindActivation, []byte(escrowconst.TargetActive))
}

// TerminateContract registers consent to terminate the contract. Streaming
// stops at the block of termination; the streamed part stays with Payee and
// the rest with Payer, both withdrawable.
//
// Produces UpdateRequested or UpdateAuthorized and StageChanged notifications.
func TerminateContract() {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeAny(parties(s))
	if s.Stage == escrowconst.StageTerminated {
		panic(common.ErrInvalidStage)
	}

	if !common.Propose(ctx, escrowconst.KindTermination, role, []byte(escrowconst.TargetTerminated)) {
		return
	}

	if s.Stage == escrowconst.StageActive {
		s.TerminatedAt = ledger.CurrentIndex()
	} else {
		s.TerminatedAt = s.LastSettlement
	}
	s.Stage = escrowconst.StageTerminated
	putState(ctx, s)

	runtime.Notify("StageChanged", s.Stage)
}

// RejectTermination withdraws the pending termination. It can be invoked by
// Payer or Payee.
func RejectTermination() {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindTermination, []byte(escrowconst.TargetTerminated))
}

// RequestPayerUpdate registers consent to replace Payer with addr. It can be
// invoked by Payer or Payee.
//
// Produces UpdateRequested or UpdateAuthorized and PartyUpdated notifications.
func RequestPayerUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeParty(parties(s))
	next := parties(s)
	next.Payer = addr
	common.CheckParties(next)

	if common.Propose(ctx, escrowconst.KindPayer, role, addr) {
		s.Payer = addr
		putState(ctx, s)
		runtime.Notify("PartyUpdated", escrowconst.KindPayer, addr)
	}
}

// RejectPayerUpdate withdraws the pending Payer update to addr. It can be
// invoked by Payer or Payee.
func RejectPayerUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindPayer, addr)
}

// RequestPayeeUpdate registers consent to replace Payee with addr. Already
// streamed funds stay on Payee balance and become available to the new
// Payee. It can be invoked by Payer or Payee.
//
// Produces UpdateRequested or UpdateAuthorized and PartyUpdated notifications.
func RequestPayeeUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeParty(parties(s))
	next := parties(s)
	next.Payee = addr
	common.CheckParties(next)

	if common.Propose(ctx, escrowconst.KindPayee, role, addr) {
		s.Payee = addr
		putState(ctx, s)
		runtime.Notify("PartyUpdated", escrowconst.KindPayee, addr)
	}
}

// RejectPayeeUpdate withdraws the pending Payee update to addr. It can be
// invoked by Payer or Payee.
func RejectPayeeUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindPayee, addr)
}

// RequestUsufructUpdate registers consent to set Usufruct to addr. It can be
// invoked by any party including current Usufruct, but only Payer and Payee
// consents are counted.
//
// Produces UpdateRequested or UpdateAuthorized and PartyUpdated notifications.
func RequestUsufructUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeAny(parties(s))
	next := parties(s)
	next.Usufruct = addr
	common.CheckAddress(addr)
	common.CheckParties(next)

	if common.Propose(ctx, escrowconst.KindUsufruct, role, addr) {
		s.Usufruct = addr
		putState(ctx, s)
		runtime.Notify("PartyUpdated", escrowconst.KindUsufruct, addr)
	}
}

// RejectUsufructUpdate withdraws the pending Usufruct update to addr. It can
// be invoked by Payer or Payee.
func RejectUsufructUpdate(addr interop.Hash160) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindUsufruct, addr)
}

// GetPendingPayerUpdate returns pending Payer update.
func GetPendingPayerUpdate() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindPayer)
}

// GetPendingPayeeUpdate returns pending Payee update.
func GetPendingPayeeUpdate() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindPayee)
}

// GetPendingUsufructUpdate returns pending Usufruct update.
func GetPendingUsufructUpdate() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindUsufruct)
}

// GetPendingStart returns pending start.
func GetPendingStart() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindActivation)
}

// GetPendingTermination returns pending termination.
func GetPendingTermination() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindTermination)
}

// GetContractDetails returns escrow parties, payment terms and settlement
// points.
func GetContractDetails() Details {
	s := getState(storage.GetReadOnlyContext())
	return Details{
		Payer:          s.Payer,
		Payee:          s.Payee,
		Usufruct:       s.Usufruct,
		Interval:       s.Interval,
		PaymentAmount:  s.PaymentAmount,
		LastSettlement: s.LastSettlement,
		TerminatedAt:   s.TerminatedAt,
	}
}

// GetContractState returns current stage: 0 for Created, 1 for InProgress
// and 2 for Terminated.
func GetContractState() int {
	return getState(storage.GetReadOnlyContext()).Stage
}

// GetPayerBalance returns Payer balance without the part streamed since the
// last settlement.
func GetPayerBalance() int {
	s := getState(storage.GetReadOnlyContext())
	return s.PayerBalance - unallocated(s, ledger.CurrentIndex())
}

// GetPayeeBalance returns Payee balance including the part streamed since
// the last settlement.
func GetPayeeBalance() int {
	s := getState(storage.GetReadOnlyContext())
	return s.PayeeBalance + unallocated(s, ledger.CurrentIndex())
}

// GetRemainingIntervals returns the number of whole intervals Payer balance
// still covers. It is available in Created and InProgress stages only.
func GetRemainingIntervals() int {
	s := getState(storage.GetReadOnlyContext())
	if s.Stage == escrowconst.StageTerminated {
		panic(common.ErrInvalidStage)
	}
	return (s.PayerBalance - unallocated(s, ledger.CurrentIndex())) / s.PaymentAmount
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// unallocated returns the amount streamed since the last settlement: one
// PaymentAmount per Interval blocks, pro-rata, but never more than Payer
// balance holds.
func unallocated(s State, now int) int {
	if s.Stage == escrowconst.StageCreated {
		return 0
	}

	end := now
	if s.Stage == escrowconst.StageTerminated {
		end = s.TerminatedAt
	}

	elapsed := end - s.LastSettlement
	if elapsed <= 0 {
		return 0
	}

	return common.Min(s.PaymentAmount*elapsed/s.Interval, s.PayerBalance)
}

func parties(s State) common.Parties {
	return common.Parties{
		Payer:    s.Payer,
		Payee:    s.Payee,
		Usufruct: s.Usufruct,
	}
}

func getState(ctx storage.Context) State {
	return common.GetSerialized(ctx, stateKey).(State)
}

func putState(ctx storage.Context, s State) {
	common.SetSerialized(ctx, stateKey, s)
}
