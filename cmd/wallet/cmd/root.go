// Package cmd implements the wallet CLI's command tree: keygen and send.
package cmd

import (
	"github.com/spf13/cobra"
)

var keyFile string

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet is a CLI for managing keys and submitting transactions",
}

// Execute runs the wallet command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyFile, "key", "k", "zblock/accounts/wallet.pem", "Path to the PEM-encoded keypair to use.")
}
