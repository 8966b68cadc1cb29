package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Role is a position of the transaction signer in the escrow.
type Role int

const (
	RoleNone Role = iota
	RolePayer
	RolePayee
	RoleUsufruct
)

// zeroAddress is never a valid party.
const zeroAddress = "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"

// Parties groups addresses of escrow roles. Usufruct is empty until it is
// set for the first time.
type Parties struct {
	Payer    interop.Hash160
	Payee    interop.Hash160
	Usufruct interop.Hash160
}

// AuthorizeAny returns the role of the transaction signer if it is Payer,
// Payee or Usufruct and panics with ErrUnauthorized otherwise.
func AuthorizeAny(p Parties) Role {
	role := signerRole(p)
	if role == RoleNone {
		panic(ErrUnauthorized)
	}
	return role
}

// AuthorizeParty is the same as AuthorizeAny but accepts only the two
// principal parties: Payer and Payee.
func AuthorizeParty(p Parties) Role {
	role := signerRole(p)
	if role != RolePayer && role != RolePayee {
		panic(ErrUnauthorized)
	}
	return role
}

// CheckPayer panics if the transaction is not signed by Payer.
func CheckPayer(p Parties) {
	checkWitnessWithPanic(p.Payer, ErrUnauthorized)
}

// CheckPayee panics if the transaction is not signed by Payee.
func CheckPayee(p Parties) {
	checkWitnessWithPanic(p.Payee, ErrUnauthorized)
}

// signerRole checks roles in Payer, Payee, Usufruct order, so a transaction
// signed by several parties acts as the first of them.
func signerRole(p Parties) Role {
	if runtime.CheckWitness(p.Payer) {
		return RolePayer
	}
	if runtime.CheckWitness(p.Payee) {
		return RolePayee
	}
	if len(p.Usufruct) == interop.Hash160Len && runtime.CheckWitness(p.Usufruct) {
		return RoleUsufruct
	}
	return RoleNone
}

// CheckAddress panics with ErrInvalidTarget if addr can't be used as a party
// address.
func CheckAddress(addr interop.Hash160) {
	if len(addr) != interop.Hash160Len || addr.Equals(zeroAddress) ||
		addr.Equals(runtime.GetExecutingScriptHash()) {
		panic(ErrInvalidTarget)
	}
}

// CheckParties validates every set address of p and panics with
// ErrInvalidTarget if any two roles share an address.
func CheckParties(p Parties) {
	CheckAddress(p.Payer)
	CheckAddress(p.Payee)
	if p.Payer.Equals(p.Payee) {
		panic(ErrInvalidTarget)
	}

	if len(p.Usufruct) == 0 {
		return
	}
	CheckAddress(p.Usufruct)
	if p.Usufruct.Equals(p.Payer) || p.Usufruct.Equals(p.Payee) {
		panic(ErrInvalidTarget)
	}
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
