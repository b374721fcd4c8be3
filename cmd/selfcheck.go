package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"formscan/internal/config"
	"formscan/internal/logger"
	"formscan/internal/recognize"
	"formscan/internal/recognize/tesseract"
)

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Verify the recognition engine installation",
	Long: `Check that the Tesseract runtime is installed, that the configured
language data is available, and that a minimal round-trip recognition
works. Run this before scheduling a batch; the batch itself only performs
the cheap availability probe.`,
	Example: `  formscan selfcheck
  formscan selfcheck --lang jpn`,
	Args: cobra.NoArgs,
	RunE: runSelfcheck,
}

func init() {
	rootCmd.AddCommand(selfcheckCmd)

	selfcheckCmd.Flags().String("lang", "", "Language data to verify (default: FORMSCAN_LANGUAGE)")
}

func runSelfcheck(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("selfcheck")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language, _ = cmd.Flags().GetString("lang")
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	report := recognize.SelfCheck(ctx, tesseract.New(), cfg.Language)

	fmt.Printf("Engine: %s\n", report.Engine)
	for _, c := range report.Checks {
		mark := "ok"
		if !c.OK {
			mark = "FAIL"
		}
		fmt.Printf("  [%s] %s", mark, c.Name)
		if c.Detail != "" {
			fmt.Printf(" - %s", c.Detail)
		}
		fmt.Println()
	}

	if !report.Passed() {
		return fmt.Errorf("self-check failed")
	}
	fmt.Println("All checks passed.")
	return nil
}
