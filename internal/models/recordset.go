package models

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RecordSet is an immutable arena of transactions plus an index-based
// partition map. Stages read rows through it and build new sets instead of
// mutating it.
type RecordSet struct {
	rows       []Transaction
	partitions map[PartitionKey][]int
	keys       []PartitionKey
}

// NewRecordSet copies txs into a new arena and indexes partitions. Row order
// is preserved and defines the tie-break order for matching.
func NewRecordSet(txs []Transaction) *RecordSet {
	rows := make([]Transaction, len(txs))
	copy(rows, txs)

	partitions := make(map[PartitionKey][]int)
	var keys []PartitionKey
	for i := range rows {
		key := rows[i].Key()
		if _, ok := partitions[key]; !ok {
			keys = append(keys, key)
		}
		partitions[key] = append(partitions[key], i)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	return &RecordSet{rows: rows, partitions: partitions, keys: keys}
}

// Len returns the number of rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rows)
}

// At returns a copy of row i.
func (rs *RecordSet) At(i int) Transaction {
	return rs.rows[i]
}

// Row returns a read-only pointer to row i. Callers must not modify it.
func (rs *RecordSet) Row(i int) *Transaction {
	return &rs.rows[i]
}

// Rows returns a copy of all rows in arena order.
func (rs *RecordSet) Rows() []Transaction {
	if rs == nil {
		return nil
	}
	out := make([]Transaction, len(rs.rows))
	copy(out, rs.rows)
	return out
}

// Select returns a copy of the rows at the given indices, in that order.
func (rs *RecordSet) Select(indices []int) []Transaction {
	out := make([]Transaction, 0, len(indices))
	for _, i := range indices {
		out = append(out, rs.rows[i])
	}
	return out
}

// PartitionKeys returns partition keys in deterministic order.
func (rs *RecordSet) PartitionKeys() []PartitionKey {
	out := make([]PartitionKey, len(rs.keys))
	copy(out, rs.keys)
	return out
}

// Partition returns the row indices of one partition in arena order.
func (rs *RecordSet) Partition(key PartitionKey) []int {
	return rs.partitions[key]
}

// PartitionCount returns the number of distinct partitions.
func (rs *RecordSet) PartitionCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.keys)
}

// Total returns the sum of all amounts.
func (rs *RecordSet) Total() decimal.Decimal {
	return SumAmounts(rs.rows)
}

// Validate checks the preconditions the matcher relies on: periods are
// month-in-year integers and ids are unique and non-empty.
func (rs *RecordSet) Validate() error {
	seen := make(map[string]struct{}, len(rs.rows))
	for i := range rs.rows {
		tx := &rs.rows[i]
		if tx.ID == "" {
			return fmt.Errorf("row %d has no id", i)
		}
		if _, dup := seen[tx.ID]; dup {
			return fmt.Errorf("duplicate transaction id %s", tx.ID)
		}
		seen[tx.ID] = struct{}{}
		if !ValidPeriod(tx.Period) {
			return fmt.Errorf("transaction %s has period %d outside %d..%d", tx.ID, tx.Period, MinPeriod, MaxPeriod)
		}
	}
	return nil
}
