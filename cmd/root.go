package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formscan/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "formscan",
	Short: "formscan - structured field extraction from scanned business forms",
	Long: `formscan converts scanned business-form images (invoices, receipts)
into structured field data using a fully local pipeline: image
preprocessing, Tesseract text recognition, and rule-based field
extraction driven by a document-type profile.

No cloud inference service is involved at any stage.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to formscan!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
