/*
Package interval implements escrow contract streaming payment from Payer to
Payee over time.

Once Payer and Payee both call StartContract, PaymentAmount flows from Payer
balance to Payee balance every Interval blocks, pro-rata for incomplete
intervals and never more than Payer has deposited. The stream is not stored,
it is computed from the current block index and moved to Payee balance
(settled) when Payee withdraws. Termination stops the stream, both balances
stay withdrawable.

Every change of escrow parties, start and termination needs consent of both
Payer and Payee, an optional third party (Usufruct) can only propose changes.

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

PaymentSettled notification. It is produced when the stream is moved to
Payee balance. Index is the block index the stream is settled up to.

	PaymentSettled:
	  - name: payee
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: index
	    type: Integer

UpdateRequested, UpdateAuthorized, UpdateRejected, PartyUpdated and
StageChanged notifications are the same as in approval escrow contract.
*/
package interval

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'state' -> std.Serialize(State)
   escrow parties, payment terms, stage, balances and settlement point
   (State is a structure defined in current package)
 - 'p' + kind -> std.Serialize(common.Pending)
   change waiting for the second consent, absent when nothing is pending
*/
