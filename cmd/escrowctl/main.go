package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/escrow-contract/common"
	"github.com/urfave/cli"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "Path to the YAML configuration file",
		EnvVar: "ESCROW_CONFIG",
	}
	rpcFlag = cli.StringFlag{
		Name:   "rpc",
		Usage:  "Network address of the Neo RPC server",
		EnvVar: "ESCROW_RPC_ENDPOINT",
	}
	walletFlag = cli.StringFlag{
		Name:   "wallet",
		Usage:  "Path to the NEP-6 wallet file used for signing",
		EnvVar: "ESCROW_WALLET",
	}
	addressFlag = cli.StringFlag{
		Name:   "address",
		Usage:  "Address of the wallet account used for signing (default account if omitted)",
		EnvVar: "ESCROW_WALLET_ADDRESS",
	}
	passwordFlag = cli.StringFlag{
		Name:   "password",
		Usage:  "Password of the wallet account",
		EnvVar: "ESCROW_WALLET_PASSWORD",
	}
	contractsFlag = cli.StringFlag{
		Name:   "contracts",
		Usage:  "Directory with compiled escrow contracts",
		EnvVar: "ESCROW_CONTRACTS",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log-level",
		Usage:  "Logger level (debug, info, warn, error)",
		EnvVar: "ESCROW_LOG_LEVEL",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "Neo escrow contracts management tool"
	app.Version = fmt.Sprintf("%d.%d.%d", common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)
	app.Flags = []cli.Flag{
		configFlag,
		rpcFlag,
		walletFlag,
		addressFlag,
		passwordFlag,
		contractsFlag,
		logLevelFlag,
	}
	app.Commands = []cli.Command{
		deployCommand,
		statusCommand,
		depositCommand,
		withdrawCommand,
		withdrawPaymentCommand,
		approveCommand,
		rejectApprovalCommand,
		terminateCommand,
		rejectTerminationCommand,
		updateCommand,
		storageCommand,
	}
	app.CommandNotFound = func(c *cli.Context, cmd string) {
		fmt.Fprintf(os.Stderr, "No such command: %s\n", cmd)
		os.Exit(1)
	}

	return app
}

func main() {
	exit(newApp().Run(os.Args))
}

func exit(err error) {
	if err == nil {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
