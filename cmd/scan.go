package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"formscan/internal/config"
	"formscan/internal/logger"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Process a single document image",
	Long: `Run the extraction pipeline over one image and write the enabled
artifacts (raw text, raw engine response, structured record) to the output
directory.`,
	Example: `  # Extract fields from one invoice scan
  formscan scan invoice.png

  # With a custom profile and output location
  formscan scan receipt.jpg --profile profiles/receipt.json -o ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output directory (default: FORMSCAN_OUTPUT_DIR)")
	scanCmd.Flags().StringP("profile", "p", "", "Rule profile JSON path (default: embedded invoice profile)")
	scanCmd.Flags().String("lang", "", "Recognition language hint (default: FORMSCAN_LANGUAGE)")
	scanCmd.Flags().Int("timeout", 0, "Recognition timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan-cmd")
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	processor, err := buildProcessor(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Pipeline setup failed")
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	if err := processor.ProcessDocument(ctx, path); err != nil {
		log.Error().Str("file", path).Err(err).Msg("Document processing failed")
		return err
	}

	fmt.Printf("Processed %s, artifacts written to %s\n", path, cfg.OutputDir)
	return nil
}
