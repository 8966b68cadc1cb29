/*
Package approval implements escrow contract releasing a fixed payment once
both Payer and Payee approve it.

Payer deposits GAS to the contract, the payment amount stays reserved on Payer
balance until Payer and Payee both call ApprovePayout. Then it moves to Payee
balance at once and the contract becomes Approved. Every change of escrow
parties and termination also needs consent of both Payer and Payee, an
optional third party (Usufruct) can only propose changes.

# Contract notifications

FundsDeposited notification. It is produced when Payer deposits GAS.

	FundsDeposited:
	  - name: payer
	    type: Hash160
	  - name: amount
	    type: Integer

FundsWithdrawn notification. It is produced when Payer withdraws GAS.

	FundsWithdrawn:
	  - name: payer
	    type: Hash160
	  - name: amount
	    type: Integer

PaymentWithdrawn notification. It is produced when Payee withdraws GAS.

	PaymentWithdrawn:
	  - name: payee
	    type: Hash160
	  - name: amount
	    type: Integer

UpdateRequested notification. It is produced when a change is proposed but
not yet consented by both parties. Kind is one of "payer", "payee",
"usufruct", "activation" and "termination", target is the proposed address
or the name of the next stage.

	UpdateRequested:
	  - name: kind
	    type: String
	  - name: target
	    type: ByteArray
	  - name: payerConsented
	    type: Boolean
	  - name: payeeConsented
	    type: Boolean

UpdateAuthorized notification. It is produced when the second party
consents and the change is applied.

	UpdateAuthorized:
	  - name: kind
	    type: String
	  - name: target
	    type: ByteArray

UpdateRejected notification. It is produced when the pending change is
rejected.

	UpdateRejected:
	  - name: kind
	    type: String
	  - name: target
	    type: ByteArray

PartyUpdated notification. It is produced when Payer, Payee or Usufruct
address changes.

	PartyUpdated:
	  - name: kind
	    type: String
	  - name: address
	    type: Hash160

StageChanged notification. It is produced on payout approval (stage 1) and
termination (stage 2).

	StageChanged:
	  - name: stage
	    type: Integer
*/
package approval

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'state' -> std.Serialize(State)
   escrow parties, stage and balances (State is a structure defined in current package)
 - 'p' + kind -> std.Serialize(common.Pending)
   change waiting for the second consent, absent when nothing is pending
*/
