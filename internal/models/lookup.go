package models

// Classification is a (process, site) pair. Either half may be empty in a
// lookup table; the resolver treats that as a partial classification.
type Classification struct {
	Process string `yaml:"process" json:"process"`
	Site    string `yaml:"site" json:"site"`
}

// Complete reports whether both halves are set.
func (c Classification) Complete() bool {
	return c.Process != "" && c.Site != ""
}

// Empty reports whether neither half is set.
func (c Classification) Empty() bool {
	return c.Process == "" && c.Site == ""
}

// LookupTables holds the three read-only classification tables. Duplicate
// keys in a source are resolved last-write-wins; the number of overwritten
// keys per table is kept in Duplicates for auditing.
type LookupTables struct {
	OrderToUnit   map[string]string
	UnitToClass   map[string]Classification
	CenterToClass map[string]Classification
	Duplicates    DuplicateCounts
}

// DuplicateCounts counts overwritten keys per lookup table.
type DuplicateCounts struct {
	Orders  int `json:"orders" yaml:"orders" xml:"orders"`
	Units   int `json:"units" yaml:"units" xml:"units"`
	Centers int `json:"centers" yaml:"centers" xml:"centers"`
}

// NewLookupTables returns empty, non-nil tables.
func NewLookupTables() *LookupTables {
	return &LookupTables{
		OrderToUnit:   make(map[string]string),
		UnitToClass:   make(map[string]Classification),
		CenterToClass: make(map[string]Classification),
	}
}

// PutOrder stores order -> unit, last write wins.
func (lt *LookupTables) PutOrder(order, unit string) {
	if _, ok := lt.OrderToUnit[order]; ok {
		lt.Duplicates.Orders++
	}
	lt.OrderToUnit[order] = unit
}

// PutUnit stores unit -> classification, last write wins.
func (lt *LookupTables) PutUnit(unit string, class Classification) {
	if _, ok := lt.UnitToClass[unit]; ok {
		lt.Duplicates.Units++
	}
	lt.UnitToClass[unit] = class
}

// PutCenter stores cost center -> classification, last write wins.
func (lt *LookupTables) PutCenter(center string, class Classification) {
	if _, ok := lt.CenterToClass[center]; ok {
		lt.Duplicates.Centers++
	}
	lt.CenterToClass[center] = class
}
