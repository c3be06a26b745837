package resolver

import (
	"fjacquet/budget-monitor/internal/models"
)

// Outcome is what a tier found for one transaction.
type Outcome struct {
	Class models.Classification
	// Unit is set by the order tier.
	Unit string
}

// Partial reports whether exactly one half of the classification is set.
func (o Outcome) Partial() bool {
	return !o.Class.Empty() && !o.Class.Complete()
}

// Tier is one step of the classification cascade.
type Tier interface {
	// Resolve returns the classification found for tx. found is false when
	// the tier leaves both process and site unset.
	Resolve(tx *models.Transaction) (outcome Outcome, found bool)

	// Name returns the name of this tier for logging and debugging purposes.
	Name() string
}

// OrderTier resolves order_ref -> unit -> (process, site).
type OrderTier struct {
	orders map[string]string
	units  map[string]models.Classification
}

// NewOrderTier builds the tier over read-only tables.
func NewOrderTier(orders map[string]string, units map[string]models.Classification) *OrderTier {
	return &OrderTier{orders: orders, units: units}
}

// Name returns the name of this tier.
func (t *OrderTier) Name() string {
	return "order"
}

// Resolve follows the order reference. A unit whose classification has only
// one half set is still a hit.
func (t *OrderTier) Resolve(tx *models.Transaction) (Outcome, bool) {
	if !tx.HasOrder() {
		return Outcome{}, false
	}
	unit, ok := t.orders[tx.OrderRef]
	if !ok {
		return Outcome{}, false
	}
	class, ok := t.units[unit]
	if !ok || class.Empty() {
		return Outcome{Unit: unit}, false
	}
	return Outcome{Class: class, Unit: unit}, true
}

// CenterTier resolves cost_center -> (process, site).
type CenterTier struct {
	centers map[string]models.Classification
}

// NewCenterTier builds the tier over a read-only table.
func NewCenterTier(centers map[string]models.Classification) *CenterTier {
	return &CenterTier{centers: centers}
}

// Name returns the name of this tier.
func (t *CenterTier) Name() string {
	return "cost_center"
}

// Resolve looks the cost center up.
func (t *CenterTier) Resolve(tx *models.Transaction) (Outcome, bool) {
	class, ok := t.centers[tx.CostCenter]
	if !ok || class.Empty() {
		return Outcome{}, false
	}
	return Outcome{Class: class}, true
}
