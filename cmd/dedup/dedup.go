// Package dedup handles the matching-only command
package dedup

import (
	"fmt"

	"fjacquet/budget-monitor/cmd/common"
	"fjacquet/budget-monitor/cmd/root"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/validation"

	"github.com/spf13/cobra"
)

// DefaultOutputDir is used when --output is not given.
const DefaultOutputDir = "output"

var policy string

// Cmd represents the dedup command
var Cmd = &cobra.Command{
	Use:   "dedup",
	Short: "Remove charge/reversal pairs from a ledger",
	Long: `Drop excluded cost center groups, then remove every charge that a later
reversal of the same amount cancels within its (cost class, cost center)
partition. Writes kept.csv, removed.csv, excluded.csv and pairs.csv.`,
	RunE: dedupFunc,
}

func init() {
	Cmd.Flags().StringVar(&policy, "malformed", "", "Malformed amount policy (reject, coerce); defaults to ingest.malformed_policy")
}

func dedupFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if err := validation.IsValidInputFile(root.SharedFlags.Transactions); err != nil {
		return fmt.Errorf("--transactions: %w", err)
	}
	outDir := root.SharedFlags.Output
	if outDir == "" {
		outDir = DefaultOutputDir
	}

	loader, err := c.NewLoader(policy)
	if err != nil {
		return err
	}
	load, err := common.LoadTransactions(loader, root.SharedFlags.Transactions, root.Log)
	if err != nil {
		return err
	}

	result, err := c.GetPipeline().Dedup(cmd.Context(), load.Transactions)
	if err != nil {
		return err
	}
	if err := c.NewWriter(outDir).WriteDedup(result); err != nil {
		return fmt.Errorf("error writing outputs: %w", err)
	}

	root.Log.Info("Deduplication completed",
		logging.F(logging.FieldOutputFile, outDir),
		logging.F("kept", len(result.Kept)),
		logging.F("removed", len(result.Removed)),
		logging.F("excluded", len(result.Excluded)))
	return nil
}
