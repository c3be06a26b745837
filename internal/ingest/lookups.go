package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budget-monitor/internal/common"
	"fjacquet/budget-monitor/internal/fileutils"
	"fjacquet/budget-monitor/internal/logging"
	"fjacquet/budget-monitor/internal/models"
)

type orderRow struct {
	OrderRef string `csv:"order_ref"`
	Unit     string `csv:"unit"`
}

type unitRow struct {
	Unit    string `csv:"unit"`
	Process string `csv:"process"`
	Site    string `csv:"site"`
}

type centerRow struct {
	CostCenter string `csv:"cost_center"`
	Process    string `csv:"process"`
	Site       string `csv:"site"`
}

// LookupSources names the three lookup table readers.
type LookupSources struct {
	Orders, Units, Centers io.Reader
	// Names used in errors; default to "orders", "units" and "centers".
	OrdersName, UnitsName, CentersName string
}

// LoadLookupFiles opens and reads the three lookup CSV files.
func (l *Loader) LoadLookupFiles(ordersPath, unitsPath, centersPath string) (*models.LookupTables, error) {
	paths := []string{ordersPath, unitsPath, centersPath}
	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			if err := f.Close(); err != nil {
				l.logger.WithError(err).Warn("Failed to close file")
			}
		}
	}()
	for _, p := range paths {
		f, err := fileutils.OpenFile(p)
		if err != nil {
			return nil, fmt.Errorf("error opening lookup table: %w", err)
		}
		files = append(files, f)
	}

	return l.LoadLookups(LookupSources{
		Orders: files[0], Units: files[1], Centers: files[2],
		OrdersName: ordersPath, UnitsName: unitsPath, CentersName: centersPath,
	})
}

// LoadLookups reads the three lookup tables. Every column of every table is
// required; duplicate keys resolve last-write-wins and are counted.
func (l *Loader) LoadLookups(src LookupSources) (*models.LookupTables, error) {
	tables := models.NewLookupTables()

	orders, err := common.ReadCSV[orderRow](src.Orders,
		l.readOptions(nameOr(src.OrdersName, "orders"), nil, []string{"order_ref", "unit"}), l.logger)
	if err != nil {
		return nil, err
	}
	for _, row := range orders {
		if key := strings.TrimSpace(row.OrderRef); key != "" {
			tables.PutOrder(key, strings.TrimSpace(row.Unit))
		}
	}

	units, err := common.ReadCSV[unitRow](src.Units,
		l.readOptions(nameOr(src.UnitsName, "units"), nil, []string{"unit", "process", "site"}), l.logger)
	if err != nil {
		return nil, err
	}
	for _, row := range units {
		if key := strings.TrimSpace(row.Unit); key != "" {
			tables.PutUnit(key, classification(row.Process, row.Site))
		}
	}

	centers, err := common.ReadCSV[centerRow](src.Centers,
		l.readOptions(nameOr(src.CentersName, "centers"), nil, []string{"cost_center", "process", "site"}), l.logger)
	if err != nil {
		return nil, err
	}
	for _, row := range centers {
		if key := strings.TrimSpace(row.CostCenter); key != "" {
			tables.PutCenter(key, classification(row.Process, row.Site))
		}
	}

	l.logger.Debug("Loaded lookup tables",
		logging.F("orders", len(tables.OrderToUnit)),
		logging.F("units", len(tables.UnitToClass)),
		logging.F("centers", len(tables.CenterToClass)),
		logging.F("duplicate_orders", tables.Duplicates.Orders),
		logging.F("duplicate_units", tables.Duplicates.Units),
		logging.F("duplicate_centers", tables.Duplicates.Centers))
	return tables, nil
}

func classification(process, site string) models.Classification {
	return models.Classification{Process: strings.TrimSpace(process), Site: strings.TrimSpace(site)}
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
