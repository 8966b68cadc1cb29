package escrow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/escrow-contract/contracts"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Manifest name prefixes of escrow contracts. Every deployed escrow instance
// has a unique suffix after the prefix.
const (
	ApprovalName = "Escrow Approval"
	IntervalName = "Escrow Interval"
)

// ErrNotEscrow is returned by InferVariant for contracts that are not escrow.
var ErrNotEscrow = errors.New("not an escrow contract")

// ContractStateGetter is the interface required for contract state
// resolution by address.
type ContractStateGetter interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// InferVariant resolves the variant of escrow contract deployed at the given
// address by its manifest name.
func InferVariant(sg ContractStateGetter, hash util.Uint160) (contracts.Variant, error) {
	c, err := sg.GetContractStateByHash(hash)
	if err != nil {
		return "", fmt.Errorf("get contract state: %w", err)
	}

	return VariantByName(c.Manifest.Name)
}

// VariantByName returns escrow variant by manifest name of the contract.
func VariantByName(name string) (contracts.Variant, error) {
	switch {
	case strings.HasPrefix(name, ApprovalName):
		return contracts.Approval, nil
	case strings.HasPrefix(name, IntervalName):
		return contracts.Interval, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrNotEscrow, name)
	}
}
