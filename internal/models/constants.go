package models

// Period bounds for month-in-year reporting periods.
const (
	MinPeriod = 1
	MaxPeriod = 12
)

// Default classification labels.
const (
	DefaultOverheadProcess = "Overhead"
	UnclassifiedLabel      = "Unclassified"
)

// DefaultExcludedGroups are the cost-center groups dropped before matching.
var DefaultExcludedGroups = []string{
	"Abastecimiento y contratos",
	"Finanzas",
	"Servicios generales",
}

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
