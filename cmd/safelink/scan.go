package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/safelinkedu/safelink/internal/config"
	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/scanner"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan a single URL and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			sc, err := scanner.NewScanner(
				scanner.DefaultConfig(),
				&scanner.StubChecker{Delay: cfg.ReputationDelay},
				logging.NewStdoutLogger("scan-cli"),
			)
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Scanning " + args[0])
			v := sc.ScanURL(cmd.Context(), args[0])
			spinner.Stop()

			printVerdict(v)
			return nil
		},
	}
	return cmd
}

func printVerdict(v scanner.Verdict) {
	switch v.Status {
	case scanner.StatusSafe:
		pterm.Success.Printfln("%s - risk score %d/100", v.Status, v.RiskScore)
	case scanner.StatusSuspicious:
		pterm.Warning.Printfln("%s - risk score %d/100", v.Status, v.RiskScore)
	default:
		pterm.Error.Printfln("%s - risk score %d/100", v.Status, v.RiskScore)
	}

	if len(v.Reasons) > 0 {
		items := make([]pterm.BulletListItem, 0, len(v.Reasons))
		for _, r := range v.Reasons {
			items = append(items, pterm.BulletListItem{Level: 0, Text: r})
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	}

	fmt.Printf("evaluated in %dms\n", v.ScanTimeMs)
}
