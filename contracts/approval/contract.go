package approval

import (
	"github.com/nspcc-dev/escrow-contract/common"
	"github.com/nspcc-dev/escrow-contract/contracts/escrowconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
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
		PaymentAmount int
		PayerBalance  int
		PayeeBalance  int
	}

	// Details is a read-only snapshot of escrow parties and payment terms.
	Details struct {
		Payer         interop.Hash160
		Payee         interop.Hash160
		Usufruct      interop.Hash160
		PaymentAmount int
	}
)

const stateKey = "state"

// _deploy stores escrow parties and payment amount.
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
		paymentAmount int
	})

	common.CheckParties(common.Parties{Payer: args.payer, Payee: args.payee, Usufruct: interop.Hash160([]byte{})})
	if args.paymentAmount <= 0 {
		panic("payment amount must be positive")
	}

	putState(ctx, State{
		Stage:         escrowconst.StageCreated,
		Payer:         args.payer,
		Payee:         args.payee,
		Usufruct:      interop.Hash160([]byte{}),
		PaymentAmount: args.paymentAmount,
	})

	runtime.Log("approval escrow contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	common.CheckUpdateAccess()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("approval escrow contract updated")
}

// OnNEP17Payment is a callback for native GAS contract. It is the only way
// to deposit funds: the payment must come from Payer and carry the deposited
// amount as data, so that the amount is declared explicitly. Payments
// without declared amount are rejected.
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
// Until the payout is approved, PaymentAmount is reserved and can't be
// withdrawn. It can be invoked only by Payer.
//
// Produces FundsWithdrawn notification.
func WithdrawFunds(amount int) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.CheckPayer(parties(s))
	common.CheckAmount(amount)

	available := s.PayerBalance
	if s.Stage == escrowconst.StageCreated {
		available = common.Sub(available, s.PaymentAmount)
	}
	common.Sub(available, amount)

	s.PayerBalance -= amount
	putState(ctx, s)

	common.Payout(s.Payer, amount)
	runtime.Notify("FundsWithdrawn", s.Payer, amount)
}

// WithdrawPayment transfers amount of GAS from Payee balance to Payee.
// It can be invoked only by Payee.
//
// Produces PaymentWithdrawn notification.
func WithdrawPayment(amount int) {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.CheckPayee(parties(s))
	common.CheckAmount(amount)

	s.PayeeBalance = common.Sub(s.PayeeBalance, amount)
	putState(ctx, s)

	common.Payout(s.Payee, amount)
	runtime.Notify("PaymentWithdrawn", s.Payee, amount)
}

// ApprovePayout registers consent to release the payment. Payer and Payee
// consents are counted, Usufruct may only start the proposal. When both
// parties have approved, PaymentAmount moves from Payer balance to Payee
// balance and the contract becomes Approved; Payer balance must cover the
// payment at that moment.
//
// Produces UpdateRequested or UpdateAuthorized and StageChanged notifications.
func ApprovePayout() {
	ctx := storage.GetContext()
	s := getState(ctx)

	role := common.AuthorizeAny(parties(s))
	if s.Stage != escrowconst.StageCreated {
		panic(common.ErrInvalidStage)
	}

	if !common.Propose(ctx, escrowconst.KindActivation, role, []byte(escrowconst.TargetActive)) {
		return
	}

	s.PayerBalance = common.Sub(s.PayerBalance, s.PaymentAmount)
	s.PayeeBalance += s.PaymentAmount
	s.Stage = escrowconst.StageActive
	putState(ctx, s)

	runtime.Notify("StageChanged", s.Stage)
}

// RejectPayout withdraws the pending payout approval. It can be invoked by
// Payer or Payee.
func RejectPayout() {
	ctx := storage.GetContext()
	s := getState(ctx)

	common.AuthorizeParty(parties(s))
	common.Reject(ctx, escrowconst.KindActivation, []byte(escrowconst.TargetActive))
}

// TerminateContract registers consent to terminate the contract. It is
// allowed in Created and Approved stages, balances stay withdrawable after
// termination.
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

// RequestPayeeUpdate registers consent to replace Payee with addr. It can be
// invoked by Payer or Payee.
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

// GetPendingPayout returns pending payout approval.
func GetPendingPayout() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindActivation)
}

// GetPendingTermination returns pending termination.
func GetPendingTermination() common.Pending {
	return common.Inspect(storage.GetReadOnlyContext(), escrowconst.KindTermination)
}

// GetContractDetails returns escrow parties and payment amount.
func GetContractDetails() Details {
	s := getState(storage.GetReadOnlyContext())
	return Details{
		Payer:         s.Payer,
		Payee:         s.Payee,
		Usufruct:      s.Usufruct,
		PaymentAmount: s.PaymentAmount,
	}
}

// GetContractState returns current stage: 0 for Created, 1 for Approved and
// 2 for Terminated.
func GetContractState() int {
	return getState(storage.GetReadOnlyContext()).Stage
}

// GetPayerBalance returns Payer balance including the reserved payment.
func GetPayerBalance() int {
	return getState(storage.GetReadOnlyContext()).PayerBalance
}

// GetPayeeBalance returns Payee balance.
func GetPayeeBalance() int {
	return getState(storage.GetReadOnlyContext()).PayeeBalance
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
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
