package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/keystore"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new Ed25519 keypair and save it to the keyfile.",
	Run:   keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func keygenRun(cmd *cobra.Command, args []string) {
	kp, err := signature.Generate()
	if err != nil {
		log.Fatal(err)
	}

	if dir := filepath.Dir(keyFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			log.Fatal(err)
		}
	}

	if err := keystore.Save(keyFile, kp); err != nil {
		log.Fatal(err)
	}

	addr := signature.AddressOf(kp.PublicKey)
	fmt.Printf("wrote %s\naddress %s\n", keyFile, addr.Hex())
}
