package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/transaction"
	"github.com/qchain/node/foundation/keystore"
)

var (
	to    string
	value uint32
	nonce uint8
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build and sign a transaction, printing its wire encoding to stdout.",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient account address (hex).")
	sendCmd.Flags().Uint32VarP(&value, "value", "v", 0, "Amount to send.")
	sendCmd.Flags().Uint8VarP(&nonce, "nonce", "n", 0, "Sending account's next nonce.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	kp, err := keystore.Load(keyFile)
	if err != nil {
		log.Fatal(err)
	}

	recipient, err := hash.ParseH160(to)
	if err != nil {
		log.Fatal(err)
	}

	tx := transaction.New(recipient, value, nonce)
	stx := transaction.Sign(tx, kp)

	fmt.Printf("hash       %s\n", stx.Hash())
	fmt.Printf("sender     %s\n", stx.Sender().Hex())
	fmt.Printf("recipient  %s\n", recipient.Hex())
	fmt.Printf("value      %d\n", value)
	fmt.Printf("nonce      %d\n", nonce)
	fmt.Printf("payload    %s\n", hex.EncodeToString(stx.Bytes()))
}
