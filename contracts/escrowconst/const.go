/*
Package escrowconst contains constants shared by escrow contracts and the
code working with them from outside of the chain.
*/
package escrowconst

// Contract stages. StageActive is called Approved in approval contract and
// InProgress in interval contract.
const (
	StageCreated    = 0
	StageActive     = 1
	StageTerminated = 2
)

// Kinds of pending authorization records.
const (
	KindPayer       = "payer"
	KindPayee       = "payee"
	KindUsufruct    = "usufruct"
	KindActivation  = "activation"
	KindTermination = "termination"
)

// Targets of lifecycle records, names of the stages they lead to.
const (
	TargetActive     = "active"
	TargetTerminated = "terminated"
)
