package query

import (
	"strings"

	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

type predicate func(orders.Record) bool

// Filter returns the records that satisfy every constraint in d, in input
// order. With no constraints the input slice itself is returned.
func Filter(records []orders.Record, d Descriptor) []orders.Record {
	preds := predicates(d)
	if len(preds) == 0 {
		return records
	}

	out := make([]orders.Record, 0, len(records))
	for _, r := range records {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r orders.Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// predicates are built in a fixed order so evaluation is deterministic.
func predicates(d Descriptor) []predicate {
	var preds []predicate

	if kw := strings.ToLower(d.Customer); kw != "" {
		preds = append(preds, func(r orders.Record) bool {
			return strings.Contains(strings.ToLower(r.Customer), kw) ||
				strings.Contains(strings.ToLower(r.ContractDescription), kw) ||
				strings.Contains(strings.ToLower(r.Memo), kw)
		})
	}

	if t := d.GPThreshold; t != nil {
		op, val := t.Operator, t.Value
		preds = append(preds, func(r orders.Record) bool {
			return compare(r.GPRate, op, val)
		})
	}

	if d.SalesRep != "" {
		preds = append(preds, equalFold(d.SalesRep, func(r orders.Record) string { return r.SalesRep }))
	}

	if d.Status != "" {
		preds = append(preds, equalFold(d.Status, func(r orders.Record) string { return r.Status }))
	}

	if d.Date != "" {
		date := d.Date
		preds = append(preds, func(r orders.Record) bool { return r.DateCreated == date })
	}

	if d.Year != "" {
		year := d.Year
		preds = append(preds, func(r orders.Record) bool { return strings.HasPrefix(r.DateCreated, year) })
	}

	return preds
}

func equalFold(want string, field func(orders.Record) string) predicate {
	want = strings.TrimSpace(want)
	return func(r orders.Record) bool {
		return strings.EqualFold(strings.TrimSpace(field(r)), want)
	}
}

// compare applies op; an unknown operator matches everything.
func compare(v float64, op string, target float64) bool {
	switch strings.TrimSpace(op) {
	case ">":
		return v > target
	case "<":
		return v < target
	case ">=":
		return v >= target
	case "<=":
		return v <= target
	case "=", "==":
		return v == target
	default:
		return true
	}
}
