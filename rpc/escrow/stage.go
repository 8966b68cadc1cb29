package escrow

import "github.com/nspcc-dev/escrow-contract/contracts/escrowconst"

// Stage is a lifecycle stage of escrow contract.
type Stage int64

const (
	StageCreated    Stage = escrowconst.StageCreated
	StageActive     Stage = escrowconst.StageActive
	StageTerminated Stage = escrowconst.StageTerminated
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "Created"
	case StageActive:
		return "Active"
	case StageTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
