package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"formscan/internal/config"
	"formscan/internal/logger"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every document image in the input directory",
	Long: `Run the full extraction pipeline over each supported image (PNG, JPEG,
TIFF) found in the input directory. Documents are processed independently:
a corrupt or unreadable file fails only its own entry while the rest of the
batch continues. A summary.json with per-document outcomes is written to
the output directory.

The engine availability check and rule-profile validation run before any
document is processed; a problem there aborts the whole batch.`,
	Example: `  # Process ./documents into ./output with the embedded invoice profile
  formscan batch

  # Custom locations and a custom profile
  formscan batch --input ./scans --output ./out --profile profiles/receipt.json

  # Four parallel workers
  formscan batch --workers 4`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("input", "i", "", "Input directory (default: FORMSCAN_INPUT_DIR)")
	batchCmd.Flags().StringP("output", "o", "", "Output directory (default: FORMSCAN_OUTPUT_DIR)")
	batchCmd.Flags().StringP("profile", "p", "", "Rule profile JSON path (default: embedded invoice profile)")
	batchCmd.Flags().String("lang", "", "Recognition language hint (default: FORMSCAN_LANGUAGE)")
	batchCmd.Flags().IntP("workers", "w", 0, "Parallel document workers (default: FORMSCAN_WORKERS)")
	batchCmd.Flags().Int("timeout", 0, "Per-document recognition timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch-cmd")

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

	summary, err := processor.Run(ctx, cfg.InputDir)
	if err != nil {
		return err
	}

	if err := processor.Writer.WriteJSON("summary.json", summary); err != nil {
		log.Warn().Err(err).Msg("Failed to write batch summary")
	}

	fmt.Printf("Processed %d document(s): %d succeeded, %d failed\n",
		summary.Total, summary.Succeeded, summary.Failed)
	for _, item := range summary.Items {
		if item.Status != "succeeded" {
			fmt.Printf("  skipped: %s (%s)\n", item.File, item.ErrorKind)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("batch completed with %d failed document(s)", summary.Failed)
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("input") {
		cfg.InputDir, _ = cmd.Flags().GetString("input")
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("profile") {
		cfg.ProfilePath, _ = cmd.Flags().GetString("profile")
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language, _ = cmd.Flags().GetString("lang")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.OCRTimeoutSeconds, _ = cmd.Flags().GetInt("timeout")
	}
}
