// Package validate handles the schema check command
package validate

import (
	"fmt"

	"fjacquet/budget-monitor/cmd/common"
	"fjacquet/budget-monitor/cmd/root"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/validation"

	"github.com/spf13/cobra"
)

var budgetFile string

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that input files carry the required columns",
	Long: `Read the ledger (and optionally the budget) with the configured column
mapping and report missing columns and malformed values without running the
reconciliation.`,
	RunE: validateFunc,
}

func init() {
	Cmd.Flags().StringVarP(&budgetFile, "budget", "b", "", "Budget CSV file")
}

func validateFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if err := validation.IsValidInputFile(root.SharedFlags.Transactions); err != nil {
		return fmt.Errorf("--transactions: %w", err)
	}

	// Coerce so that every malformed value is reported rather than dropped.
	loader, err := c.NewLoader("coerce")
	if err != nil {
		return err
	}
	txLoad, err := common.LoadTransactions(loader, root.SharedFlags.Transactions, root.Log)
	if err != nil {
		return err
	}
	issues := len(txLoad.Rejected) + len(txLoad.Coerced)

	if budgetFile != "" {
		if err := validation.IsValidInputFile(budgetFile); err != nil {
			return fmt.Errorf("--budget: %w", err)
		}
		budgetLoad, err := common.LoadBudget(loader, budgetFile, root.Log)
		if err != nil {
			return err
		}
		issues += len(budgetLoad.Rejected) + len(budgetLoad.Coerced)
	}

	root.Log.Info("Validation completed",
		logging.F(logging.FieldCount, len(txLoad.Transactions)),
		logging.F("issues", issues))
	if issues > 0 {
		return fmt.Errorf("validation found %d malformed values", issues)
	}
	return nil
}
