package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// Payout transfers amount of GAS from the executing contract to the receiver.
// Zero amount is a valid transfer.
func Payout(to interop.Hash160, amount int) {
	if !gas.Transfer(runtime.GetExecutingScriptHash(), to, amount, nil) {
		panic(ErrTransferFailed)
	}
}

// CheckGASPayment aborts execution if the NEP-17 payment comes from some
// other contract than GAS.
func CheckGASPayment() {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		AbortWithMessage("only GAS can be accepted for deposit")
	}
}

// AbortWithMessage calls `runtime.Log` with passed message
// and calls `ABORT` opcode.
func AbortWithMessage(msg string) {
	runtime.Log(msg)
	util.Abort()
}
