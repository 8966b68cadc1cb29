package deploy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/escrow-contract/contracts"
	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required to deploy escrow contracts.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetApplicationLog returns execution results of the persisted transaction.
	// Together with GetBlockCount it lets the actor wait for transactions.
	GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	// Compiled escrow contract, see [contracts.Get].
	Contract contracts.Contract

	// Number of blocks the deployment transaction stays valid for. Defaults
	// to 100.
	ValidBlocks uint32
}

// ApprovalPrm groups deployment parameters of the approval escrow contract.
type ApprovalPrm struct {
	Payer         util.Uint160
	Payee         util.Uint160
	PaymentAmount *big.Int
}

// IntervalPrm groups deployment parameters of the interval escrow contract.
type IntervalPrm struct {
	Payer         util.Uint160
	Payee         util.Uint160
	Interval      uint32
	PaymentAmount *big.Int
}

// Prm groups all parameters of the escrow deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It pays for the deployment and becomes the sender of contract.
	LocalAccount *wallet.Account

	Common CommonDeployPrm
}

const defaultValidBlocks = 100

var (
	errInvalidParties = errors.New("payer and payee must be distinct non-zero addresses")
	errInvalidAmount  = errors.New("payment amount must be positive")
	errZeroInterval   = errors.New("interval must be positive")

	// ErrDeployFailed is returned when the deployment transaction has been
	// accepted by the network with FAULT state.
	ErrDeployFailed = errors.New("deployment transaction failed")
)

// Approval deploys new instance of approval escrow contract and returns its
// address.
//
// Approval aborts by context or when the transaction expires. Deployment
// progress is logged.
func Approval(ctx context.Context, prm Prm, args ApprovalPrm) (util.Uint160, error) {
	err := checkTerms(args.Payer, args.Payee, args.PaymentAmount)
	if err != nil {
		return util.Uint160{}, err
	}

	return deploy(ctx, prm, contracts.Approval, []any{args.Payer, args.Payee, args.PaymentAmount})
}

// Interval deploys new instance of interval escrow contract and returns its
// address. See [Approval] for details.
func Interval(ctx context.Context, prm Prm, args IntervalPrm) (util.Uint160, error) {
	err := checkTerms(args.Payer, args.Payee, args.PaymentAmount)
	if err != nil {
		return util.Uint160{}, err
	}
	if args.Interval == 0 {
		return util.Uint160{}, errZeroInterval
	}

	return deploy(ctx, prm, contracts.Interval,
		[]any{args.Payer, args.Payee, int64(args.Interval), args.PaymentAmount})
}

func checkTerms(payer, payee util.Uint160, amount *big.Int) error {
	if payer.Equals(util.Uint160{}) || payee.Equals(util.Uint160{}) || payer.Equals(payee) {
		return errInvalidParties
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	return nil
}

func deploy(ctx context.Context, prm Prm, v contracts.Variant, data []any) (util.Uint160, error) {
	logger := prm.Logger.With(zap.Stringer("variant", v))

	manif, err := instanceManifest(prm.Common.Contract, v)
	if err != nil {
		return util.Uint160{}, err
	}

	span := prm.Common.ValidBlocks
	if span == 0 {
		span = defaultValidBlocks
	}

	act, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: prm.LocalAccount.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: escrowTransactionModifier(prm.Blockchain.GetBlockCount, span),
	})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	addr := state.CreateContractHash(act.Sender(), prm.Common.Contract.NEF.Checksum, manif.Name)
	logger = logger.With(zap.Stringer("address", addr))

	txHash, vub, err := management.New(act).Deploy(&prm.Common.Contract.NEF, &manif, data)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	logger.Info("deployment transaction sent, waiting for it to be accepted",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	err = awaitHalt(ctx, act, txHash, vub)
	if err != nil {
		return util.Uint160{}, err
	}

	logger.Info("escrow contract successfully deployed", zap.String("name", manif.Name))

	return addr, nil
}

// txWaiter waits for the transaction to be accepted, see [actor.Actor.Wait].
type txWaiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// awaitHalt waits until the transaction is accepted or expired and checks
// that it has been executed successfully.
func awaitHalt(ctx context.Context, w txWaiter, txHash util.Uint256, vub uint32) error {
	type waitResult struct {
		res *state.AppExecResult
		err error
	}

	ch := make(chan waitResult, 1)
	go func() {
		res, err := w.Wait(txHash, vub, nil)
		ch <- waitResult{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), r.err)
		}
		return checkExecution(r.res)
	}
}

func checkExecution(res *state.AppExecResult) error {
	if res.VMState != vmstate.Halt {
		return fmt.Errorf("%w: %s", ErrDeployFailed, res.FaultException)
	}

	return nil
}

// instanceManifest returns manifest of the new escrow instance. Contract
// address depends on the sender, NEF checksum and manifest name, so each
// instance gets a unique name suffix.
func instanceManifest(c contracts.Contract, v contracts.Variant) (manifest.Manifest, error) {
	prefix := escrow.ApprovalName
	if v == contracts.Interval {
		prefix = escrow.IntervalName
	}

	if c.Manifest.Name != prefix {
		return manifest.Manifest{}, fmt.Errorf("unexpected manifest name %q of %s contract", c.Manifest.Name, v)
	}

	id := uuid.New()

	res := c.Manifest
	res.Name = prefix + " " + base58.Encode(id[:])

	return res, nil
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's ValidUntilBlock
// to the current height plus span, capped by math.MaxUint32.
func escrowTransactionModifier(getBlockchainHeight func() (uint32, error), span uint32) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		curHeight, err := getBlockchainHeight()
		if err != nil {
			return fmt.Errorf("get blockchain height: %w", err)
		}

		if math.MaxUint32-span > curHeight {
			tx.ValidUntilBlock = curHeight + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}
