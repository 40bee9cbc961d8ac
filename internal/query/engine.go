package query

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

// DefaultContextRecords bounds how many filtered records go to the
// free-text answerer.
const DefaultContextRecords = 200

// Answerer produces free text for questions the engine cannot aggregate.
type Answerer interface {
	Answer(ctx context.Context, question string, records []orders.Record) (string, error)
}

type Engine struct {
	answerer     Answerer
	contextLimit int
}

func NewEngine(answerer Answerer, contextLimit int) *Engine {
	if contextLimit <= 0 {
		contextLimit = DefaultContextRecords
	}
	return &Engine{answerer: answerer, contextLimit: contextLimit}
}

type handler func(e *Engine, ctx context.Context, question string, d Descriptor, filtered []orders.Record) (string, error)

var handlers = map[Intent]handler{
	IntentCount: func(_ *Engine, _ context.Context, _ string, _ Descriptor, rs []orders.Record) (string, error) {
		return renderCount(Count(rs)), nil
	},
	IntentList: func(_ *Engine, _ context.Context, _ string, d Descriptor, rs []orders.Record) (string, error) {
		if len(rs) == 0 {
			return noMatch, nil
		}
		lines := make([]string, len(rs))
		for i, r := range rs {
			lines[i] = Project(r, d.Fields)
		}
		return strings.Join(lines, "\n"), nil
	},
	IntentSample: func(_ *Engine, _ context.Context, _ string, d Descriptor, rs []orders.Record) (string, error) {
		if len(rs) == 0 {
			return noMatch, nil
		}
		return Project(rs[0], d.Fields), nil
	},
	IntentTopCustomers: ranked(func(r orders.Record) string { return r.Customer }),
	IntentTopDivision:  ranked(func(r orders.Record) string { return r.Division }),
	IntentTopSales:     ranked(func(r orders.Record) string { return r.SalesRep }),
	IntentMonthlyTotals: func(e *Engine, ctx context.Context, q string, d Descriptor, rs []orders.Record) (string, error) {
		if d.Year == "" || d.SalesRep == "" {
			return e.fallback(ctx, q, rs)
		}
		return renderMonthly(d.SalesRep, d.Year, MonthlyTotals(rs, d.SalesRep, d.Year)), nil
	},
}

func ranked(key func(orders.Record) string) handler {
	return func(_ *Engine, _ context.Context, _ string, d Descriptor, rs []orders.Record) (string, error) {
		return renderRanking(Rank(rs, key, d.TopN)), nil
	}
}

// Answer filters records by d and dispatches on its intent. The general
// intent skips filtering and goes straight to the answerer.
func (e *Engine) Answer(ctx context.Context, question string, d Descriptor, records []orders.Record) (string, error) {
	if d.Intent == IntentGeneral {
		return e.answerer.Answer(ctx, question, nil)
	}

	filtered := Filter(records, d)
	h, ok := handlers[d.Intent]
	if !ok {
		return e.fallback(ctx, question, filtered)
	}
	return h(e, ctx, question, d, filtered)
}

func (e *Engine) fallback(ctx context.Context, question string, filtered []orders.Record) (string, error) {
	if len(filtered) > e.contextLimit {
		filtered = filtered[:e.contextLimit]
	}
	return e.answerer.Answer(ctx, question, filtered)
}

type CountResult struct {
	Orders      int
	TotalAmount decimal.Decimal
	HighestGP   float64
}

// Count is zero-valued for an empty input.
func Count(records []orders.Record) CountResult {
	res := CountResult{TotalAmount: decimal.Zero}
	for i, r := range records {
		res.TotalAmount = res.TotalAmount.Add(decimal.NewFromFloat(r.Amount))
		if i == 0 || r.GPRate > res.HighestGP {
			res.HighestGP = r.GPRate
		}
	}
	res.Orders = len(records)
	return res
}

type GroupTotal struct {
	Key   string
	Total decimal.Decimal
}

// Rank sums amount per key and returns the topN largest groups, descending.
// Equal totals keep first-seen order.
func Rank(records []orders.Record, key func(orders.Record) string, topN int) []GroupTotal {
	if len(records) == 0 {
		return nil
	}
	if topN < 1 {
		topN = 1
	}

	groups := sumBy(records, key)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})

	if len(groups) > topN {
		groups = groups[:topN]
	}
	return groups
}

var billableStatuses = map[string]bool{
	"BILLED":                              true,
	"PARTIALLYBILLED/PARTIALLY DELIVERED": true,
	"PARTIALLY DELIVERED":                 true,
	"PENDING BILLING":                     true,
	"PENDING DELIVERY":                    true,
	"JO IN-PROCESS":                       true,
}

// MonthlyTotals sums billable or in-progress orders of one rep in one year
// per YYYY-MM, in ascending month order.
func MonthlyTotals(records []orders.Record, salesRep, year string) []GroupTotal {
	rep := strings.TrimSpace(salesRep)

	var kept []orders.Record
	for _, r := range records {
		if !billableStatuses[strings.ToUpper(strings.TrimSpace(r.Status))] {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.SalesRep), rep) {
			continue
		}
		if len(r.DateCreated) < 7 || !strings.HasPrefix(r.DateCreated, year) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}

	months := sumBy(kept, func(r orders.Record) string { return r.DateCreated[:7] })
	sort.Slice(months, func(i, j int) bool { return months[i].Key < months[j].Key })
	return months
}

// sumBy groups in first-seen order.
func sumBy(records []orders.Record, key func(orders.Record) string) []GroupTotal {
	idx := make(map[string]int)
	var groups []GroupTotal
	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, GroupTotal{Key: k, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(decimal.NewFromFloat(r.Amount))
	}
	return groups
}
