package escrow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/nspcc-dev/escrow-contract/rpc/escrow"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Read balances of both parties of an escrow deployed to the network.
func ExampleContractReader_GetPayerBalance() {
	const rpcEndpoint = "http://localhost:30333"

	c, err := rpcclient.New(context.Background(), rpcEndpoint, rpcclient.Options{})
	if err != nil {
		log.Fatal(err)
	}

	err = c.Init()
	if err != nil {
		log.Fatal(err)
	}

	addr, err := util.Uint160DecodeStringLE("cb6fb8a5ee9c4ca5f9b1f4ad6a0a7b8b4f1d5b9a")
	if err != nil {
		log.Fatal(err)
	}

	variant, err := escrow.InferVariant(c, addr)
	if err != nil {
		log.Fatal(err)
	}

	reader := escrow.NewReader(invoker.New(c, nil), addr)

	payer, err := reader.GetPayerBalance()
	if err != nil {
		log.Fatal(err)
	}

	payee, err := reader.GetPayeeBalance()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s escrow: payer %s, payee %s\n", variant, payer, payee)
}
