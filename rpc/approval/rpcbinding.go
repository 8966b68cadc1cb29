// Package approval contains RPC wrappers for approval escrow contract.
package approval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// EscrowDetails is a contract-specific approval.Details type used by its methods.
type EscrowDetails struct {
	Payer         util.Uint160
	Payee         util.Uint160
	Usufruct      *util.Uint160
	PaymentAmount *big.Int
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	escrow.ContractReader
}

// Contract implements all contract methods.
type Contract struct {
	escrow.Contract
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker escrow.Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{*escrow.NewReader(invoker, hash)}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor escrow.Actor, hash util.Uint160) *Contract {
	return &Contract{*escrow.New(actor, hash)}
}

// StageName returns name of the stage as approval contract calls it.
func StageName(s escrow.Stage) string {
	if s == escrow.StageActive {
		return "Approved"
	}
	return s.String()
}

// GetContractDetails invokes `getContractDetails` method of contract.
func (c *ContractReader) GetContractDetails() (*EscrowDetails, error) {
	return itemToEscrowDetails(c.CallItem("getContractDetails"))
}

// GetPendingPayout invokes `getPendingPayout` method of contract.
func (c *ContractReader) GetPendingPayout() (*escrow.CommonPending, error) {
	return c.Pending("getPendingPayout")
}

// GetContractDetails invokes `getContractDetails` method of contract.
func (c *Contract) GetContractDetails() (*EscrowDetails, error) {
	return itemToEscrowDetails(c.CallItem("getContractDetails"))
}

// GetPendingPayout invokes `getPendingPayout` method of contract.
func (c *Contract) GetPendingPayout() (*escrow.CommonPending, error) {
	return c.Pending("getPendingPayout")
}

// ApprovePayout creates a transaction invoking `approvePayout` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ApprovePayout() (util.Uint256, uint32, error) {
	return c.Call("approvePayout")
}

// ApprovePayoutTransaction creates a transaction invoking `approvePayout` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ApprovePayoutTransaction() (*transaction.Transaction, error) {
	return c.CallTransaction("approvePayout")
}

// ApprovePayoutUnsigned creates a transaction invoking `approvePayout` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ApprovePayoutUnsigned() (*transaction.Transaction, error) {
	return c.CallUnsigned("approvePayout")
}

// RejectPayout creates a transaction invoking `rejectPayout` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectPayout() (util.Uint256, uint32, error) {
	return c.Call("rejectPayout")
}

// RejectPayoutTransaction creates a transaction invoking `rejectPayout` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectPayoutTransaction() (*transaction.Transaction, error) {
	return c.CallTransaction("rejectPayout")
}

// RejectPayoutUnsigned creates a transaction invoking `rejectPayout` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectPayoutUnsigned() (*transaction.Transaction, error) {
	return c.CallUnsigned("rejectPayout")
}

// itemToEscrowDetails converts stack item into *EscrowDetails.
func itemToEscrowDetails(item stackitem.Item, err error) (*EscrowDetails, error) {
	if err != nil {
		return nil, err
	}
	var res = new(EscrowDetails)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of EscrowDetails from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *EscrowDetails) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Payer, err = escrow.Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payer: %w", err)
	}

	index++
	res.Payee, err = escrow.Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payee: %w", err)
	}

	index++
	res.Usufruct, err = escrow.OptionalUint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Usufruct: %w", err)
	}

	index++
	res.PaymentAmount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field PaymentAmount: %w", err)
	}

	return nil
}
