// Command wallet is the offline counterpart to cmd/node: it generates and
// stores Ed25519 keypairs and produces signed transactions without ever
// dialing a running node, since transaction submission over the network is
// out of this core's scope.
package main

import (
	"fmt"
	"os"

	"github.com/qchain/node/cmd/wallet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
