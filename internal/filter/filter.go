// Package filter implements the cost-group exclusion applied before matching
// and the optional dimension filter applied before allocation.
package filter

import (
	"strings"

	"fjacquet/budget-monitor/internal/models"
)

// GroupExclusion drops rows whose cost group is in a fixed list.
type GroupExclusion struct {
	groups map[string]struct{}
}

// NewGroupExclusion builds an exclusion over groups. Names are compared
// after trimming surrounding spaces.
func NewGroupExclusion(groups []string) *GroupExclusion {
	set := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			set[g] = struct{}{}
		}
	}
	return &GroupExclusion{groups: set}
}

// Excludes reports whether the group is excluded.
func (g *GroupExclusion) Excludes(group string) bool {
	_, ok := g.groups[strings.TrimSpace(group)]
	return ok
}

// Apply splits txs into retained and excluded rows, both in input order.
func (g *GroupExclusion) Apply(txs []models.Transaction) (retained, excluded []models.Transaction) {
	retained = make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if g.Excludes(tx.CostGroup) {
			excluded = append(excluded, tx)
			continue
		}
		retained = append(retained, tx)
	}
	return retained, excluded
}

// Dimensions selects rows by exact match. A zero field matches everything.
type Dimensions struct {
	Year          int    `json:"year,omitempty" yaml:"year,omitempty" xml:"year,omitempty"`
	Area          string `json:"area,omitempty" yaml:"area,omitempty" xml:"area,omitempty"`
	AccountFamily string `json:"account_family,omitempty" yaml:"account_family,omitempty" xml:"account_family,omitempty"`
	CostClass     string `json:"cost_class,omitempty" yaml:"cost_class,omitempty" xml:"cost_class,omitempty"`
	CostGroup     string `json:"cost_group,omitempty" yaml:"cost_group,omitempty" xml:"cost_group,omitempty"`
	Process       string `json:"process,omitempty" yaml:"process,omitempty" xml:"process,omitempty"`
	Site          string `json:"site,omitempty" yaml:"site,omitempty" xml:"site,omitempty"`
}

// IsZero reports whether no dimension is set.
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

// Match reports whether tx passes every set dimension.
func (d Dimensions) Match(tx *models.Transaction) bool {
	return (d.Year == 0 || tx.FiscalYear == d.Year) &&
		matches(d.Area, tx.Area) &&
		matches(d.AccountFamily, tx.AccountFamily) &&
		matches(d.CostClass, tx.CostClass) &&
		matches(d.CostGroup, tx.CostGroup) &&
		matches(d.Process, tx.Process) &&
		matches(d.Site, tx.Site)
}

// WithoutCategory returns d with the classification dimensions (process,
// site) cleared. Those select allocated categories, not rows, so that a
// category keeps its share of the overhead.
func (d Dimensions) WithoutCategory() Dimensions {
	d.Process = ""
	d.Site = ""
	return d
}

// SelectsCategory reports whether a process or site is set.
func (d Dimensions) SelectsCategory() bool {
	return d.Process != "" || d.Site != ""
}

// MatchCategory reports whether a (process, site) category passes the
// classification dimensions.
func (d Dimensions) MatchCategory(process, site string) bool {
	return matches(d.Process, process) && matches(d.Site, site)
}

// MatchBudget applies the dimensions a budget entry carries (year, area,
// cost class, process, site). Account family and cost group filters do not
// constrain budget entries. An entry with an empty value for a filtered
// dimension does not match.
func (d Dimensions) MatchBudget(b *models.BudgetEntry) bool {
	return (d.Year == 0 || b.Year == d.Year) &&
		matches(d.Area, b.Area) &&
		matches(d.CostClass, b.CostClass) &&
		matches(d.Process, b.Process) &&
		matches(d.Site, b.Site)
}

// Transactions returns the rows of txs that match, in input order.
func (d Dimensions) Transactions(txs []models.Transaction) []models.Transaction {
	if d.IsZero() {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for i := range txs {
		if d.Match(&txs[i]) {
			out = append(out, txs[i])
		}
	}
	return out
}

// Budget returns the entries that match, in input order.
func (d Dimensions) Budget(entries []models.BudgetEntry) []models.BudgetEntry {
	if d.IsZero() {
		return entries
	}
	out := make([]models.BudgetEntry, 0, len(entries))
	for i := range entries {
		if d.MatchBudget(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || want == got
}
