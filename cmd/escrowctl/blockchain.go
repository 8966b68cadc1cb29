package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/escrow-contract/contracts"
	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// wrapper over rpcNeo providing escrow services needed for current command.
type remoteBlockchain struct {
	log   *zap.Logger
	rpc   *rpcclient.Client
	actor *actor.Actor
	acc   *wallet.Account
}

// newRemoteBlockchain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. If signer is set, transactions are signed by the
// configured wallet account. Otherwise, a throwaway account is used since
// read-only calls need no witness.
func newRemoteBlockchain(cfg config, log *zap.Logger, signer bool) (*remoteBlockchain, error) {
	acc, err := wallet.NewAccount()
	if err != nil {
		return nil, fmt.Errorf("generate new Neo account: %w", err)
	}

	if signer {
		acc, err = openAccount(cfg)
		if err != nil {
			return nil, err
		}
	}

	c, err := rpcclient.New(context.Background(), cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.DialTimeout,
		RequestTimeout: cfg.RPC.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return &remoteBlockchain{
		log:   log,
		rpc:   c,
		actor: act,
		acc:   acc,
	}, nil
}

// openAccount reads the wallet file and decrypts the account used for
// signing. Default wallet account is used if no address is configured.
func openAccount(cfg config) (*wallet.Account, error) {
	if cfg.Wallet.Path == "" {
		return nil, fmt.Errorf("missing wallet file")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet.Path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	addr := w.GetChangeAddress()
	if cfg.Wallet.Address != "" {
		addr, err = parseAddress(cfg.Wallet.Address)
		if err != nil {
			return nil, fmt.Errorf("wallet address: %w", err)
		}
	}

	acc := w.GetAccount(addr)
	if acc == nil {
		return nil, fmt.Errorf("account %s not found in wallet %s", address.Uint160ToString(addr), cfg.Wallet.Path)
	}

	err = acc.Decrypt(cfg.Wallet.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// variant resolves the kind of escrow contract deployed at the given address.
func (x *remoteBlockchain) variant(contract util.Uint160) (contracts.Variant, error) {
	return escrow.InferVariant(x.rpc, contract)
}

// await waits for the transaction sent by actor to be accepted and checks
// its execution result.
func (x *remoteBlockchain) await(txHash util.Uint256, vub uint32, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	x.log.Info("transaction sent, waiting for it to be accepted",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := x.actor.Wait(txHash, vub, nil)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", txHash.StringLE(), res.FaultException)
	}

	x.log.Info("transaction successfully executed", zap.Stringer("tx", txHash))

	return nil
}

// iterateContractStorage iterates over all storage items of the Neo smart
// contract referenced by given address and passes them into f.
// iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(contract util.Uint160, f func(key, value []byte) error) error {
	nLatestBlock, err := x.actor.GetBlockCount()
	if err != nil {
		return fmt.Errorf("get number of the latest block: %w", err)
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at penult block #%d: %w", nLatestBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
