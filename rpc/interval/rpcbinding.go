// Package interval contains RPC wrappers for interval escrow contract.
package interval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// EscrowDetails is a contract-specific interval.Details type used by its methods.
type EscrowDetails struct {
	Payer          util.Uint160
	Payee          util.Uint160
	Usufruct       *util.Uint160
	Interval       *big.Int
	PaymentAmount  *big.Int
	LastSettlement *big.Int
	TerminatedAt   *big.Int
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

// StageName returns name of the stage as interval contract calls it.
func StageName(s escrow.Stage) string {
	if s == escrow.StageActive {
		return "InProgress"
	}
	return s.String()
}

// GetContractDetails invokes `getContractDetails` method of contract.
func (c *ContractReader) GetContractDetails() (*EscrowDetails, error) {
	return itemToEscrowDetails(c.CallItem("getContractDetails"))
}

// GetPendingStart invokes `getPendingStart` method of contract.
func (c *ContractReader) GetPendingStart() (*escrow.CommonPending, error) {
	return c.Pending("getPendingStart")
}

// GetRemainingIntervals invokes `getRemainingIntervals` method of contract.
func (c *ContractReader) GetRemainingIntervals() (*big.Int, error) {
	return itemToBigInt(c.CallItem("getRemainingIntervals"))
}

// GetContractDetails invokes `getContractDetails` method of contract.
func (c *Contract) GetContractDetails() (*EscrowDetails, error) {
	return itemToEscrowDetails(c.CallItem("getContractDetails"))
}

// GetPendingStart invokes `getPendingStart` method of contract.
func (c *Contract) GetPendingStart() (*escrow.CommonPending, error) {
	return c.Pending("getPendingStart")
}

// GetRemainingIntervals invokes `getRemainingIntervals` method of contract.
func (c *Contract) GetRemainingIntervals() (*big.Int, error) {
	return itemToBigInt(c.CallItem("getRemainingIntervals"))
}

// StartContract creates a transaction invoking `startContract` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) StartContract() (util.Uint256, uint32, error) {
	return c.Call("startContract")
}

// StartContractTransaction creates a transaction invoking `startContract` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) StartContractTransaction() (*transaction.Transaction, error) {
	return c.CallTransaction("startContract")
}

// StartContractUnsigned creates a transaction invoking `startContract` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) StartContractUnsigned() (*transaction.Transaction, error) {
	return c.CallUnsigned("startContract")
}

// RejectStart creates a transaction invoking `rejectStart` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectStart() (util.Uint256, uint32, error) {
	return c.Call("rejectStart")
}

// RejectStartTransaction creates a transaction invoking `rejectStart` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectStartTransaction() (*transaction.Transaction, error) {
	return c.CallTransaction("rejectStart")
}

// RejectStartUnsigned creates a transaction invoking `rejectStart` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectStartUnsigned() (*transaction.Transaction, error) {
	return c.CallUnsigned("rejectStart")
}

func itemToBigInt(item stackitem.Item, err error) (*big.Int, error) {
	if err != nil {
		return nil, err
	}
	return item.TryInteger()
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
	if len(arr) != 7 {
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
	res.Interval, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Interval: %w", err)
	}

	index++
	res.PaymentAmount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field PaymentAmount: %w", err)
	}

	index++
	res.LastSettlement, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field LastSettlement: %w", err)
	}

	index++
	res.TerminatedAt, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TerminatedAt: %w", err)
	}

	return nil
}
