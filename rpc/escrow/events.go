package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// FundsDepositedEvent represents "FundsDeposited" event emitted by the contract.
// FundsDeposited is produced when Payer deposits GAS.
type FundsDepositedEvent struct {
	Payer  util.Uint160
	Amount *big.Int
}

// FundsWithdrawnEvent represents "FundsWithdrawn" event emitted by the contract.
// FundsWithdrawn is produced when Payer withdraws GAS.
type FundsWithdrawnEvent struct {
	Payer  util.Uint160
	Amount *big.Int
}

// PaymentWithdrawnEvent represents "PaymentWithdrawn" event emitted by the contract.
// PaymentWithdrawn is produced when Payee withdraws GAS.
type PaymentWithdrawnEvent struct {
	Payee  util.Uint160
	Amount *big.Int
}

// PaymentSettledEvent represents "PaymentSettled" event emitted by the contract.
// PaymentSettled is produced by interval escrow when streamed funds are
// moved to Payee balance.
type PaymentSettledEvent struct {
	Payee  util.Uint160
	Amount *big.Int
	Index  *big.Int
}

// UpdateRequestedEvent represents "UpdateRequested" event emitted by the contract.
// UpdateRequested is produced when a change still waits for consent.
type UpdateRequestedEvent struct {
	Kind           string
	Target         []byte
	PayerConsented bool
	PayeeConsented bool
}

// UpdateAuthorizedEvent represents "UpdateAuthorized" event emitted by the contract.
// UpdateAuthorized is produced when both parties have consented to a change.
type UpdateAuthorizedEvent struct {
	Kind   string
	Target []byte
}

// UpdateRejectedEvent represents "UpdateRejected" event emitted by the contract.
// UpdateRejected is produced when a pending change is rejected.
type UpdateRejectedEvent struct {
	Kind   string
	Target []byte
}

// PartyUpdatedEvent represents "PartyUpdated" event emitted by the contract.
// PartyUpdated is produced when Payer, Payee or Usufruct address changes.
type PartyUpdatedEvent struct {
	Kind    string
	Address util.Uint160
}

// StageChangedEvent represents "StageChanged" event emitted by the contract.
// StageChanged is produced when contract moves to the next stage.
type StageChangedEvent struct {
	Stage Stage
}

// FundsDepositedEventsFromApplicationLog retrieves a set of all emitted events
// with "FundsDeposited" name from the provided [result.ApplicationLog].
func FundsDepositedEventsFromApplicationLog(log *result.ApplicationLog) ([]*FundsDepositedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*FundsDepositedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "FundsDeposited" {
				continue
			}
			event := new(FundsDepositedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize FundsDepositedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to FundsDepositedEvent or
// returns an error if it's not possible to do to so.
func (e *FundsDepositedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Payer, err = Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payer: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// FundsWithdrawnEventsFromApplicationLog retrieves a set of all emitted events
// with "FundsWithdrawn" name from the provided [result.ApplicationLog].
func FundsWithdrawnEventsFromApplicationLog(log *result.ApplicationLog) ([]*FundsWithdrawnEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*FundsWithdrawnEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "FundsWithdrawn" {
				continue
			}
			event := new(FundsWithdrawnEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize FundsWithdrawnEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to FundsWithdrawnEvent or
// returns an error if it's not possible to do to so.
func (e *FundsWithdrawnEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Payer, err = Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payer: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// PaymentWithdrawnEventsFromApplicationLog retrieves a set of all emitted events
// with "PaymentWithdrawn" name from the provided [result.ApplicationLog].
func PaymentWithdrawnEventsFromApplicationLog(log *result.ApplicationLog) ([]*PaymentWithdrawnEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PaymentWithdrawnEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PaymentWithdrawn" {
				continue
			}
			event := new(PaymentWithdrawnEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PaymentWithdrawnEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PaymentWithdrawnEvent or
// returns an error if it's not possible to do to so.
func (e *PaymentWithdrawnEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Payee, err = Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payee: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// PaymentSettledEventsFromApplicationLog retrieves a set of all emitted events
// with "PaymentSettled" name from the provided [result.ApplicationLog].
func PaymentSettledEventsFromApplicationLog(log *result.ApplicationLog) ([]*PaymentSettledEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PaymentSettledEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PaymentSettled" {
				continue
			}
			event := new(PaymentSettledEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PaymentSettledEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PaymentSettledEvent or
// returns an error if it's not possible to do to so.
func (e *PaymentSettledEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
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
	e.Payee, err = Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Payee: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Index, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Index: %w", err)
	}

	return nil
}

// UpdateRequestedEventsFromApplicationLog retrieves a set of all emitted events
// with "UpdateRequested" name from the provided [result.ApplicationLog].
func UpdateRequestedEventsFromApplicationLog(log *result.ApplicationLog) ([]*UpdateRequestedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UpdateRequestedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "UpdateRequested" {
				continue
			}
			event := new(UpdateRequestedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize UpdateRequestedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to UpdateRequestedEvent or
// returns an error if it's not possible to do to so.
func (e *UpdateRequestedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
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
	e.Kind, err = stringFromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Kind: %w", err)
	}

	index++
	e.Target, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Target: %w", err)
	}

	index++
	e.PayerConsented, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field PayerConsented: %w", err)
	}

	index++
	e.PayeeConsented, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field PayeeConsented: %w", err)
	}

	return nil
}

// UpdateAuthorizedEventsFromApplicationLog retrieves a set of all emitted events
// with "UpdateAuthorized" name from the provided [result.ApplicationLog].
func UpdateAuthorizedEventsFromApplicationLog(log *result.ApplicationLog) ([]*UpdateAuthorizedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UpdateAuthorizedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "UpdateAuthorized" {
				continue
			}
			event := new(UpdateAuthorizedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize UpdateAuthorizedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to UpdateAuthorizedEvent or
// returns an error if it's not possible to do to so.
func (e *UpdateAuthorizedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Kind, err = stringFromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Kind: %w", err)
	}

	index++
	e.Target, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Target: %w", err)
	}

	return nil
}

// UpdateRejectedEventsFromApplicationLog retrieves a set of all emitted events
// with "UpdateRejected" name from the provided [result.ApplicationLog].
func UpdateRejectedEventsFromApplicationLog(log *result.ApplicationLog) ([]*UpdateRejectedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UpdateRejectedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "UpdateRejected" {
				continue
			}
			event := new(UpdateRejectedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize UpdateRejectedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to UpdateRejectedEvent or
// returns an error if it's not possible to do to so.
func (e *UpdateRejectedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Kind, err = stringFromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Kind: %w", err)
	}

	index++
	e.Target, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Target: %w", err)
	}

	return nil
}

// PartyUpdatedEventsFromApplicationLog retrieves a set of all emitted events
// with "PartyUpdated" name from the provided [result.ApplicationLog].
func PartyUpdatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*PartyUpdatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PartyUpdatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PartyUpdated" {
				continue
			}
			event := new(PartyUpdatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PartyUpdatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PartyUpdatedEvent or
// returns an error if it's not possible to do to so.
func (e *PartyUpdatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Kind, err = stringFromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Kind: %w", err)
	}

	index++
	e.Address, err = Uint160FromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Address: %w", err)
	}

	return nil
}

// StageChangedEventsFromApplicationLog retrieves a set of all emitted events
// with "StageChanged" name from the provided [result.ApplicationLog].
func StageChangedEventsFromApplicationLog(log *result.ApplicationLog) ([]*StageChangedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*StageChangedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "StageChanged" {
				continue
			}
			event := new(StageChangedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize StageChangedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to StageChangedEvent or
// returns an error if it's not possible to do to so.
func (e *StageChangedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Stage, err = stageFromStackItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Stage: %w", err)
	}

	return nil
}

func stringFromStackItem(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

func stageFromStackItem(item stackitem.Item) (Stage, error) {
	i, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() {
		return 0, errors.New("not an int64")
	}
	return Stage(i.Int64()), nil
}
