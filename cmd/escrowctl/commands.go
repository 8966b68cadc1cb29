package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"

	"github.com/nspcc-dev/escrow-contract/contracts"
	"github.com/nspcc-dev/escrow-contract/deploy"
	"github.com/nspcc-dev/escrow-contract/rpc/approval"
	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/escrow-contract/rpc/interval"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// gasDecimals is the precision of GAS token amounts.
const gasDecimals = 8

var (
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "Amount of GAS, e.g. 1.5",
	}
	payerFlag = cli.StringFlag{
		Name:  "payer",
		Usage: "Address of the payer",
	}
	payeeFlag = cli.StringFlag{
		Name:  "payee",
		Usage: "Address of the payee",
	}
	intervalFlag = cli.UintFlag{
		Name:  "interval",
		Usage: "Number of blocks the payment amount is streamed over",
	}
	targetFlag = cli.StringFlag{
		Name:  "target",
		Usage: "Address proposed for the party",
	}
)

var (
	deployCommand = cli.Command{
		Name:  "deploy",
		Usage: "Deploy new escrow contract signed by the wallet account",
		Subcommands: []cli.Command{
			{
				Name:   string(contracts.Approval),
				Usage:  "Deploy escrow releasing the payment after approval of both parties",
				Flags:  []cli.Flag{payerFlag, payeeFlag, amountFlag},
				Action: deployApproval,
			},
			{
				Name:   string(contracts.Interval),
				Usage:  "Deploy escrow streaming the payment over time",
				Flags:  []cli.Flag{payerFlag, payeeFlag, intervalFlag, amountFlag},
				Action: deployInterval,
			},
		},
	}
	statusCommand = cli.Command{
		Name:      "status",
		Usage:     "Print state, balances and pending updates of escrow contract",
		ArgsUsage: "<contract>",
		Action:    status,
	}
	depositCommand = cli.Command{
		Name:      "deposit",
		Usage:     "Transfer GAS from the payer to escrow contract",
		ArgsUsage: "<contract>",
		Flags:     []cli.Flag{amountFlag},
		Action: withContract(func(_ *cli.Context, c *escrow.Contract, amount *big.Int) (util.Uint256, uint32, error) {
			return c.DepositFunds(amount)
		}),
	}
	withdrawCommand = cli.Command{
		Name:      "withdraw",
		Usage:     "Withdraw payer funds from escrow contract",
		ArgsUsage: "<contract>",
		Flags:     []cli.Flag{amountFlag},
		Action: withContract(func(_ *cli.Context, c *escrow.Contract, amount *big.Int) (util.Uint256, uint32, error) {
			return c.WithdrawFunds(amount)
		}),
	}
	withdrawPaymentCommand = cli.Command{
		Name:      "withdraw-payment",
		Usage:     "Withdraw released payment by the payee",
		ArgsUsage: "<contract>",
		Flags:     []cli.Flag{amountFlag},
		Action: withContract(func(_ *cli.Context, c *escrow.Contract, amount *big.Int) (util.Uint256, uint32, error) {
			return c.WithdrawPayment(amount)
		}),
	}
	approveCommand = cli.Command{
		Name:      "approve",
		Usage:     "Consent to payout of approval escrow or to start of interval escrow",
		ArgsUsage: "<contract>",
		Action:    vote(true),
	}
	rejectApprovalCommand = cli.Command{
		Name:      "reject-approval",
		Usage:     "Cancel pending payout of approval escrow or start of interval escrow",
		ArgsUsage: "<contract>",
		Action:    vote(false),
	}
	terminateCommand = cli.Command{
		Name:      "terminate",
		Usage:     "Consent to termination of escrow contract",
		ArgsUsage: "<contract>",
		Action: withContract(func(_ *cli.Context, c *escrow.Contract, _ *big.Int) (util.Uint256, uint32, error) {
			return c.TerminateContract()
		}),
	}
	rejectTerminationCommand = cli.Command{
		Name:      "reject-termination",
		Usage:     "Cancel pending termination of escrow contract",
		ArgsUsage: "<contract>",
		Action: withContract(func(_ *cli.Context, c *escrow.Contract, _ *big.Int) (util.Uint256, uint32, error) {
			return c.RejectTermination()
		}),
	}
	updateCommand = cli.Command{
		Name:  "update",
		Usage: "Propose or reject replacement of escrow party",
		Subcommands: []cli.Command{
			partyCommand("payer",
				(*escrow.Contract).RequestPayerUpdate, (*escrow.Contract).RejectPayerUpdate),
			partyCommand("payee",
				(*escrow.Contract).RequestPayeeUpdate, (*escrow.Contract).RejectPayeeUpdate),
			partyCommand("usufruct",
				(*escrow.Contract).RequestUsufructUpdate, (*escrow.Contract).RejectUsufructUpdate),
		},
	}
	storageCommand = cli.Command{
		Name:      "storage",
		Usage:     "Print raw storage items of escrow contract",
		ArgsUsage: "<contract>",
		Action:    dumpStorage,
	}
)

type partyMethod func(*escrow.Contract, util.Uint160) (util.Uint256, uint32, error)

func partyCommand(kind string, request, reject partyMethod) cli.Command {
	call := func(m partyMethod) func(*cli.Context, *escrow.Contract, *big.Int) (util.Uint256, uint32, error) {
		return func(ctx *cli.Context, c *escrow.Contract, _ *big.Int) (util.Uint256, uint32, error) {
			target, err := parseAddress(ctx.String(targetFlag.Name))
			if err != nil {
				return util.Uint256{}, 0, fmt.Errorf("target: %w", err)
			}
			return m(c, target)
		}
	}

	return cli.Command{
		Name:  kind,
		Usage: "Replace " + kind + " of escrow contract",
		Subcommands: []cli.Command{
			{
				Name:      "request",
				Usage:     "Consent to the new " + kind,
				ArgsUsage: "<contract>",
				Flags:     []cli.Flag{targetFlag},
				Action:    withContract(call(request)),
			},
			{
				Name:      "reject",
				Usage:     "Cancel pending " + kind + " update",
				ArgsUsage: "<contract>",
				Flags:     []cli.Flag{targetFlag},
				Action:    withContract(call(reject)),
			},
		},
	}
}

// session groups resources of the single command execution.
type session struct {
	cfg config
	log *zap.Logger
	bc  *remoteBlockchain
}

func newSession(c *cli.Context, signer bool) (*session, error) {
	cfg, err := loadConfig(c.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}

	applyFlags(c, &cfg)

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	bc, err := newRemoteBlockchain(cfg, log, signer)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init remote blockchain: %w", err)
	}

	return &session{cfg: cfg, log: log, bc: bc}, nil
}

func (s *session) close() {
	s.bc.close()
	_ = s.log.Sync()
}

// withContract returns action sending transaction built by f to the escrow
// contract passed as the first argument. The amount is nil if the command
// has no amount flag.
func withContract(f func(*cli.Context, *escrow.Contract, *big.Int) (util.Uint256, uint32, error)) func(*cli.Context) error {
	return func(c *cli.Context) error {
		contract, err := contractArg(c)
		if err != nil {
			return err
		}

		var amount *big.Int
		if hasFlag(c, amountFlag.Name) {
			amount, err = parseAmount(c.String(amountFlag.Name))
			if err != nil {
				return err
			}
		}

		s, err := newSession(c, true)
		if err != nil {
			return err
		}
		defer s.close()

		_, err = s.bc.variant(contract)
		if err != nil {
			return err
		}

		return s.bc.await(f(c, escrow.New(s.bc.actor, contract), amount))
	}
}

func vote(approve bool) func(*cli.Context) error {
	return func(c *cli.Context) error {
		contract, err := contractArg(c)
		if err != nil {
			return err
		}

		s, err := newSession(c, true)
		if err != nil {
			return err
		}
		defer s.close()

		v, err := s.bc.variant(contract)
		if err != nil {
			return err
		}

		switch {
		case v == contracts.Approval && approve:
			return s.bc.await(approval.New(s.bc.actor, contract).ApprovePayout())
		case v == contracts.Approval:
			return s.bc.await(approval.New(s.bc.actor, contract).RejectPayout())
		case approve:
			return s.bc.await(interval.New(s.bc.actor, contract).StartContract())
		default:
			return s.bc.await(interval.New(s.bc.actor, contract).RejectStart())
		}
	}
}

func deployApproval(c *cli.Context) error {
	payer, payee, amount, err := termsFlags(c)
	if err != nil {
		return err
	}

	return deployVariant(c, contracts.Approval, func(ctx context.Context, prm deploy.Prm) (util.Uint160, error) {
		return deploy.Approval(ctx, prm, deploy.ApprovalPrm{
			Payer:         payer,
			Payee:         payee,
			PaymentAmount: amount,
		})
	})
}

func deployInterval(c *cli.Context) error {
	payer, payee, amount, err := termsFlags(c)
	if err != nil {
		return err
	}

	return deployVariant(c, contracts.Interval, func(ctx context.Context, prm deploy.Prm) (util.Uint160, error) {
		return deploy.Interval(ctx, prm, deploy.IntervalPrm{
			Payer:         payer,
			Payee:         payee,
			Interval:      uint32(c.Uint(intervalFlag.Name)),
			PaymentAmount: amount,
		})
	})
}

func deployVariant(c *cli.Context, v contracts.Variant, f func(context.Context, deploy.Prm) (util.Uint160, error)) error {
	s, err := newSession(c, true)
	if err != nil {
		return err
	}
	defer s.close()

	ctr, err := contracts.GetFromDir(s.cfg.Deploy.Contracts, v)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	addr, err := f(ctx, deploy.Prm{
		Logger:       s.log,
		Blockchain:   s.bc.rpc,
		LocalAccount: s.bc.acc,
		Common: deploy.CommonDeployPrm{
			Contract:    ctr,
			ValidBlocks: s.cfg.Deploy.ValidBlocks,
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, address.Uint160ToString(addr))

	return nil
}

func termsFlags(c *cli.Context) (payer, payee util.Uint160, amount *big.Int, err error) {
	payer, err = parseAddress(c.String(payerFlag.Name))
	if err != nil {
		return payer, payee, nil, fmt.Errorf("payer: %w", err)
	}

	payee, err = parseAddress(c.String(payeeFlag.Name))
	if err != nil {
		return payer, payee, nil, fmt.Errorf("payee: %w", err)
	}

	amount, err = parseAmount(c.String(amountFlag.Name))

	return payer, payee, amount, err
}

func status(c *cli.Context) error {
	contract, err := contractArg(c)
	if err != nil {
		return err
	}

	s, err := newSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	v, err := s.bc.variant(contract)
	if err != nil {
		return err
	}

	w := c.App.Writer
	reader := escrow.NewReader(s.bc.actor, contract)

	fmt.Fprintf(w, "Contract:\t%s (%s)\n", address.Uint160ToString(contract), v)

	stage, err := reader.GetContractState()
	if err != nil {
		return fmt.Errorf("get contract state: %w", err)
	}

	var (
		pendingStart func() (*escrow.CommonPending, error)
		startLabel   string
	)

	switch v {
	case contracts.Approval:
		r := approval.NewReader(s.bc.actor, contract)

		d, err := r.GetContractDetails()
		if err != nil {
			return fmt.Errorf("get contract details: %w", err)
		}

		fmt.Fprintf(w, "Stage:\t\t%s\n", approval.StageName(stage))
		printParties(w, d.Payer, d.Payee, d.Usufruct)
		fmt.Fprintf(w, "Payment:\t%s GAS\n", formatAmount(d.PaymentAmount))

		pendingStart, startLabel = r.GetPendingPayout, "payout"
	case contracts.Interval:
		r := interval.NewReader(s.bc.actor, contract)

		d, err := r.GetContractDetails()
		if err != nil {
			return fmt.Errorf("get contract details: %w", err)
		}

		fmt.Fprintf(w, "Stage:\t\t%s\n", interval.StageName(stage))
		printParties(w, d.Payer, d.Payee, d.Usufruct)
		fmt.Fprintf(w, "Payment:\t%s GAS per %s blocks\n", formatAmount(d.PaymentAmount), d.Interval)
		fmt.Fprintf(w, "Settled at:\t%s\n", d.LastSettlement)

		if stage != escrow.StageTerminated {
			n, err := r.GetRemainingIntervals()
			if err != nil {
				return fmt.Errorf("get remaining intervals: %w", err)
			}
			fmt.Fprintf(w, "Remaining:\t%s intervals\n", n)
		}

		pendingStart, startLabel = r.GetPendingStart, "start"
	}

	payerBalance, err := reader.GetPayerBalance()
	if err != nil {
		return fmt.Errorf("get payer balance: %w", err)
	}

	payeeBalance, err := reader.GetPayeeBalance()
	if err != nil {
		return fmt.Errorf("get payee balance: %w", err)
	}

	fmt.Fprintf(w, "Payer balance:\t%s GAS\n", formatAmount(payerBalance))
	fmt.Fprintf(w, "Payee balance:\t%s GAS\n", formatAmount(payeeBalance))

	for _, p := range []struct {
		label string
		get   func() (*escrow.CommonPending, error)
	}{
		{label: "payer", get: reader.GetPendingPayerUpdate},
		{label: "payee", get: reader.GetPendingPayeeUpdate},
		{label: "usufruct", get: reader.GetPendingUsufructUpdate},
		{label: startLabel, get: pendingStart},
		{label: "termination", get: reader.GetPendingTermination},
	} {
		rec, err := p.get()
		if err != nil {
			return fmt.Errorf("get pending %s update: %w", p.label, err)
		}

		if rec.IsNeutral() {
			continue
		}

		target := string(rec.Target)
		if addr, err := rec.TargetAddress(); err == nil {
			target = address.Uint160ToString(addr)
		}

		fmt.Fprintf(w, "Pending %s:\t%s (payer: %t, payee: %t)\n", p.label, target, rec.PayerConsented, rec.PayeeConsented)
	}

	return nil
}

func printParties(w io.Writer, payer, payee util.Uint160, usufruct *util.Uint160) {
	fmt.Fprintf(w, "Payer:\t\t%s\n", address.Uint160ToString(payer))
	fmt.Fprintf(w, "Payee:\t\t%s\n", address.Uint160ToString(payee))
	if usufruct != nil {
		fmt.Fprintf(w, "Usufruct:\t%s\n", address.Uint160ToString(*usufruct))
	}
}

func dumpStorage(c *cli.Context) error {
	contract, err := contractArg(c)
	if err != nil {
		return err
	}

	s, err := newSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	return s.bc.iterateContractStorage(contract, func(key, value []byte) error {
		_, err := fmt.Fprintf(c.App.Writer, "%s\t%s\n", hex.EncodeToString(key), hex.EncodeToString(value))
		return err
	})
}

func contractArg(c *cli.Context) (util.Uint160, error) {
	if c.NArg() != 1 {
		return util.Uint160{}, errors.New("need escrow contract address as argument")
	}

	addr, err := parseAddress(c.Args().First())
	if err != nil {
		return addr, fmt.Errorf("contract: %w", err)
	}

	return addr, nil
}

func hasFlag(c *cli.Context, name string) bool {
	for _, f := range c.Command.Flags {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

// parseAddress accepts Neo address or script hash in the little-endian hex.
func parseAddress(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, errors.New("missing address")
	}

	res, err := address.StringToUint160(s)
	if err == nil {
		return res, nil
	}

	res, err = util.Uint160DecodeStringLE(s)
	if err != nil {
		return res, fmt.Errorf("invalid address %q", s)
	}

	return res, nil
}

// parseAmount parses positive GAS amount into the fractional units.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("missing amount")
	}

	res, err := fixedn.FromString(s, gasDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if res.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %s", s)
	}

	return res, nil
}

func formatAmount(v *big.Int) string {
	return fixedn.ToString(v, gasDecimals)
}
