package common

// Failure messages of escrow contracts. Every one of them is thrown with
// panic, so the transaction FAULTs and none of its writes or notifications
// survive.
const (
	// ErrUnauthorized is thrown when no transaction witness belongs to a role
	// allowed to perform the operation.
	ErrUnauthorized = "caller is not authorized"

	// ErrInvalidTarget is thrown for an unusable party address: wrong length,
	// zero address, contract's own address or an address already taken by
	// another role.
	ErrInvalidTarget = "invalid target address"

	// ErrInvalidStage is thrown when the operation is not allowed at the
	// current contract stage.
	ErrInvalidStage = "operation is not allowed at current stage"

	// ErrInsufficientFunds is thrown when a balance would become negative.
	ErrInsufficientFunds = "insufficient funds"

	// ErrValueMismatch is thrown when the declared deposit amount differs
	// from the amount actually transferred.
	ErrValueMismatch = "declared amount does not match transferred value"

	// ErrUnsolicitedPayment is thrown for payments that are not deposits.
	ErrUnsolicitedPayment = "unsolicited payment"

	// ErrNegativeAmount is thrown for negative amount arguments.
	ErrNegativeAmount = "negative amount"

	// ErrTransferFailed is thrown when GAS contract refuses the transfer.
	ErrTransferFailed = "failed to transfer funds, aborting"
)
