// Package escrow contains RPC wrappers for methods and notifications shared
// by all escrow contracts. Variant-specific wrappers embed types of this
// package.
package escrow

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// CommonPending is a contract-specific common.Pending type used by its methods.
type CommonPending struct {
	PayerConsented bool
	PayeeConsented bool
	Target         []byte
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	nep17.Actor

	Sender() util.Uint160

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Hash returns address of the contract.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// GetContractState invokes `getContractState` method of contract.
func (c *ContractReader) GetContractState() (Stage, error) {
	i, err := unwrap.Int64(c.invoker.Call(c.hash, "getContractState"))
	return Stage(i), err
}

// GetPayerBalance invokes `getPayerBalance` method of contract.
func (c *ContractReader) GetPayerBalance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "getPayerBalance"))
}

// GetPayeeBalance invokes `getPayeeBalance` method of contract.
func (c *ContractReader) GetPayeeBalance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "getPayeeBalance"))
}

// GetPendingPayerUpdate invokes `getPendingPayerUpdate` method of contract.
func (c *ContractReader) GetPendingPayerUpdate() (*CommonPending, error) {
	return itemToCommonPending(unwrap.Item(c.invoker.Call(c.hash, "getPendingPayerUpdate")))
}

// GetPendingPayeeUpdate invokes `getPendingPayeeUpdate` method of contract.
func (c *ContractReader) GetPendingPayeeUpdate() (*CommonPending, error) {
	return itemToCommonPending(unwrap.Item(c.invoker.Call(c.hash, "getPendingPayeeUpdate")))
}

// GetPendingUsufructUpdate invokes `getPendingUsufructUpdate` method of contract.
func (c *ContractReader) GetPendingUsufructUpdate() (*CommonPending, error) {
	return itemToCommonPending(unwrap.Item(c.invoker.Call(c.hash, "getPendingUsufructUpdate")))
}

// GetPendingTermination invokes `getPendingTermination` method of contract.
func (c *ContractReader) GetPendingTermination() (*CommonPending, error) {
	return itemToCommonPending(unwrap.Item(c.invoker.Call(c.hash, "getPendingTermination")))
}

// CallItem invokes the given safe method of contract and returns the only
// resulting stack item. It is used by variant-specific wrappers.
func (c *ContractReader) CallItem(method string, params ...any) (stackitem.Item, error) {
	return unwrap.Item(c.invoker.Call(c.hash, method, params...))
}

// Pending invokes method returning pending authorization record by its name.
// It is used by variant-specific wrappers.
func (c *ContractReader) Pending(method string) (*CommonPending, error) {
	return itemToCommonPending(unwrap.Item(c.invoker.Call(c.hash, method)))
}

// DepositFunds creates a transaction transferring amount of GAS from the
// actor's account to the contract with amount declared in transfer data.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DepositFunds(amount *big.Int) (util.Uint256, uint32, error) {
	return gas.New(c.actor).Transfer(c.actor.Sender(), c.hash, amount, amount)
}

// DepositFundsTransaction is the same as DepositFunds, but the transaction is
// signed and returned to the caller instead of being sent.
func (c *Contract) DepositFundsTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return gas.New(c.actor).TransferTransaction(c.actor.Sender(), c.hash, amount, amount)
}

// DepositFundsUnsigned is the same as DepositFunds, but the transaction is
// neither signed nor sent.
func (c *Contract) DepositFundsUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return gas.New(c.actor).TransferUnsigned(c.actor.Sender(), c.hash, amount, amount)
}

// Call creates a transaction invoking the given method of the contract and
// sends it to the network. It is used by variant-specific
// wrappers.
func (c *Contract) Call(method string, params ...any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, method, params...)
}

// CallTransaction is the same as Call, but the transaction is signed and
// returned to the caller instead of being sent.
func (c *Contract) CallTransaction(method string, params ...any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, method, params...)
}

// CallUnsigned is the same as Call, but the transaction is neither signed
// nor sent.
func (c *Contract) CallUnsigned(method string, params ...any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, method, nil, params...)
}

// WithdrawFunds creates a transaction invoking `withdrawFunds` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawFunds(amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawFunds", amount)
}

// WithdrawFundsTransaction creates a transaction invoking `withdrawFunds` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawFundsTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawFunds", amount)
}

// WithdrawFundsUnsigned creates a transaction invoking `withdrawFunds` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawFundsUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawFunds", nil, amount)
}

// WithdrawPayment creates a transaction invoking `withdrawPayment` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawPayment(amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawPayment", amount)
}

// WithdrawPaymentTransaction creates a transaction invoking `withdrawPayment` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawPaymentTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawPayment", amount)
}

// WithdrawPaymentUnsigned creates a transaction invoking `withdrawPayment` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawPaymentUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawPayment", nil, amount)
}

// TerminateContract creates a transaction invoking `terminateContract` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TerminateContract() (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "terminateContract")
}

// TerminateContractTransaction creates a transaction invoking `terminateContract` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TerminateContractTransaction() (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "terminateContract")
}

// TerminateContractUnsigned creates a transaction invoking `terminateContract` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TerminateContractUnsigned() (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "terminateContract", nil)
}

// RejectTermination creates a transaction invoking `rejectTermination` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectTermination() (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "rejectTermination")
}

// RejectTerminationTransaction creates a transaction invoking `rejectTermination` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectTerminationTransaction() (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "rejectTermination")
}

// RejectTerminationUnsigned creates a transaction invoking `rejectTermination` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectTerminationUnsigned() (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "rejectTermination", nil)
}

// RequestPayerUpdate creates a transaction invoking `requestPayerUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RequestPayerUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "requestPayerUpdate", addr)
}

// RequestPayerUpdateTransaction creates a transaction invoking `requestPayerUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RequestPayerUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "requestPayerUpdate", addr)
}

// RequestPayerUpdateUnsigned creates a transaction invoking `requestPayerUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RequestPayerUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "requestPayerUpdate", nil, addr)
}

// RejectPayerUpdate creates a transaction invoking `rejectPayerUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectPayerUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "rejectPayerUpdate", addr)
}

// RejectPayerUpdateTransaction creates a transaction invoking `rejectPayerUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectPayerUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "rejectPayerUpdate", addr)
}

// RejectPayerUpdateUnsigned creates a transaction invoking `rejectPayerUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectPayerUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "rejectPayerUpdate", nil, addr)
}

// RequestPayeeUpdate creates a transaction invoking `requestPayeeUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RequestPayeeUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "requestPayeeUpdate", addr)
}

// RequestPayeeUpdateTransaction creates a transaction invoking `requestPayeeUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RequestPayeeUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "requestPayeeUpdate", addr)
}

// RequestPayeeUpdateUnsigned creates a transaction invoking `requestPayeeUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RequestPayeeUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "requestPayeeUpdate", nil, addr)
}

// RejectPayeeUpdate creates a transaction invoking `rejectPayeeUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectPayeeUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "rejectPayeeUpdate", addr)
}

// RejectPayeeUpdateTransaction creates a transaction invoking `rejectPayeeUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectPayeeUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "rejectPayeeUpdate", addr)
}

// RejectPayeeUpdateUnsigned creates a transaction invoking `rejectPayeeUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectPayeeUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "rejectPayeeUpdate", nil, addr)
}

// RequestUsufructUpdate creates a transaction invoking `requestUsufructUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RequestUsufructUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "requestUsufructUpdate", addr)
}

// RequestUsufructUpdateTransaction creates a transaction invoking `requestUsufructUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RequestUsufructUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "requestUsufructUpdate", addr)
}

// RequestUsufructUpdateUnsigned creates a transaction invoking `requestUsufructUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RequestUsufructUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "requestUsufructUpdate", nil, addr)
}

// RejectUsufructUpdate creates a transaction invoking `rejectUsufructUpdate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectUsufructUpdate(addr util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "rejectUsufructUpdate", addr)
}

// RejectUsufructUpdateTransaction creates a transaction invoking `rejectUsufructUpdate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectUsufructUpdateTransaction(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "rejectUsufructUpdate", addr)
}

// RejectUsufructUpdateUnsigned creates a transaction invoking `rejectUsufructUpdate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectUsufructUpdateUnsigned(addr util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "rejectUsufructUpdate", nil, addr)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// itemToCommonPending converts stack item into *CommonPending.
func itemToCommonPending(item stackitem.Item, err error) (*CommonPending, error) {
	if err != nil {
		return nil, err
	}
	var res = new(CommonPending)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of CommonPending from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *CommonPending) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.PayerConsented, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field PayerConsented: %w", err)
	}

	index++
	res.PayeeConsented, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field PayeeConsented: %w", err)
	}

	index++
	res.Target, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Target: %w", err)
	}

	return nil
}

// IsNeutral checks whether nothing is pending.
func (res *CommonPending) IsNeutral() bool {
	return !res.PayerConsented && !res.PayeeConsented && len(res.Target) == 0
}

// TargetAddress decodes record target as an address. It fails for records
// of lifecycle changes whose target is a stage name.
func (res *CommonPending) TargetAddress() (util.Uint160, error) {
	return util.Uint160DecodeBytesBE(res.Target)
}

// Uint160FromStackItem decodes address stored in the stack item.
func Uint160FromStackItem(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}

// OptionalUint160FromStackItem is the same as Uint160FromStackItem, but
// returns nil for empty value used by contracts for unset addresses.
func OptionalUint160FromStackItem(item stackitem.Item) (*util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
