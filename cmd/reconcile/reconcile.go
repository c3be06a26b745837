// Package reconcile handles the full reconciliation command
package reconcile

import (
	"fmt"
	"time"

	"fjacquet/budget-monitor/cmd/common"
	"fjacquet/budget-monitor/cmd/root"
	"fjacquet/budget-monitor/internal/filter"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/pipeline"
	"fjacquet/budget-monitor/internal/report"
	"fjacquet/budget-monitor/internal/validation"

	"github.com/spf13/cobra"
)

// DefaultOutputDir is used when --output is not given.
const DefaultOutputDir = "output"

// Flags holds the reconcile command's own flags.
type Flags struct {
	Budget  string
	Lookups string
	Files   common.LookupFiles
	Format  string
	Policy  string
	Filter  filter.Dimensions
}

var flags Flags

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the full reconciliation and write the reports",
	Long: `Load the ledger, the budget and the lookup tables, remove reversal pairs,
classify every line, allocate overhead and compare actual spend with the
budget. Results are written as CSV tables plus a summary document.`,
	RunE: reconcileFunc,
}

func init() {
	f := Cmd.Flags()
	f.StringVarP(&flags.Budget, "budget", "b", "", "Budget CSV file")
	f.StringVar(&flags.Lookups, "lookups", "", "Lookup tables YAML file")
	f.StringVar(&flags.Files.Orders, "orders", "", "Order to unit CSV table")
	f.StringVar(&flags.Files.Units, "units", "", "Unit to process/site CSV table")
	f.StringVar(&flags.Files.Centers, "centers", "", "Cost center to process/site CSV table")
	f.StringVar(&flags.Format, "format", "", "Summary format (json, xml, yaml); defaults to report.format")
	f.StringVar(&flags.Policy, "malformed", "", "Malformed amount policy (reject, coerce); defaults to ingest.malformed_policy")
	RegisterFilterFlags(Cmd, &flags.Filter)
}

// RegisterFilterFlags adds the dimension filter flags to cmd.
func RegisterFilterFlags(cmd *cobra.Command, dims *filter.Dimensions) {
	f := cmd.Flags()
	f.IntVar(&dims.Year, "year", 0, "Only this fiscal year")
	f.StringVar(&dims.Area, "area", "", "Only this area")
	f.StringVar(&dims.AccountFamily, "family", "", "Only this account family")
	f.StringVar(&dims.CostClass, "cost-class", "", "Only this cost class")
	f.StringVar(&dims.CostGroup, "cost-group", "", "Only this cost center group")
	f.StringVar(&dims.Process, "process", "", "Only this process")
	f.StringVar(&dims.Site, "site", "", "Only this site")
}

func reconcileFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	log := root.Log

	format := flags.Format
	if format == "" {
		format = c.GetConfig().Report.Format
	}
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	if err := validation.IsValidInputFile(root.SharedFlags.Transactions); err != nil {
		return fmt.Errorf("--transactions: %w", err)
	}
	if flags.Budget != "" {
		if err := validation.IsValidInputFile(flags.Budget); err != nil {
			return fmt.Errorf("--budget: %w", err)
		}
	}
	if err := validation.LookupSources(flags.Lookups, flags.Files.Orders, flags.Files.Units, flags.Files.Centers); err != nil {
		return err
	}
	outDir := root.SharedFlags.Output
	if outDir == "" {
		outDir = DefaultOutputDir
	}

	loader, err := c.NewLoader(flags.Policy)
	if err != nil {
		return err
	}
	txLoad, err := common.LoadTransactions(loader, root.SharedFlags.Transactions, log)
	if err != nil {
		return err
	}
	budgetLoad, err := common.LoadBudget(loader, flags.Budget, log)
	if err != nil {
		return err
	}
	tables, err := common.LoadLookups(loader, c.NewLookupStore(flags.Lookups), flags.Files, log)
	if err != nil {
		return err
	}

	result, err := c.GetPipeline().Run(cmd.Context(), pipeline.Input{
		Transactions: txLoad.Transactions,
		Budget:       budgetLoad.Entries,
		Lookups:      tables,
		Filter:       flags.Filter,
		Rejected:     len(txLoad.Rejected) + len(budgetLoad.Rejected),
		Coerced:      len(txLoad.Coerced) + len(budgetLoad.Coerced),
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	summary := report.NewSummary(result, flags.Filter, tables, time.Now())
	if err := c.NewWriter(outDir).WriteAll(result, summary, format); err != nil {
		return fmt.Errorf("error writing reports: %w", err)
	}

	log.Info("Reconciliation written",
		logging.F(logging.FieldOutputFile, outDir),
		logging.F(logging.FieldStatus, string(summary.Status)),
		logging.F("ratio", summary.Ratio),
		logging.F("cumulative_actual", summary.CumulativeActual),
		logging.F("cumulative_budget", summary.CumulativeBudget))
	return nil
}
