package query

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cast"

	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

type Intent string

const (
	IntentCount         Intent = "count"
	IntentList          Intent = "list"
	IntentSample        Intent = "sample"
	IntentTopCustomers  Intent = "topCustomers"
	IntentTopDivision   Intent = "topDivision"
	IntentTopSales      Intent = "topSales"
	IntentMonthlyTotals Intent = "monthlyTotals"
	IntentGeneral       Intent = "general"
)

var knownIntents = map[string]Intent{}

func init() {
	for _, in := range []Intent{
		IntentCount, IntentList, IntentSample, IntentTopCustomers,
		IntentTopDivision, IntentTopSales, IntentMonthlyTotals, IntentGeneral,
	} {
		knownIntents[strings.ToLower(string(in))] = in
	}
}

// GPThreshold compares a record's gpRate against Value.
type GPThreshold struct {
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// Descriptor is the validated form of what the translator returned.
// Empty strings and a nil GPThreshold mean "no constraint".
type Descriptor struct {
	Intent      Intent       `json:"intent"`
	Date        string       `json:"date,omitempty"`
	Year        string       `json:"year,omitempty"`
	GPThreshold *GPThreshold `json:"gpThreshold,omitempty"`
	Customer    string       `json:"customer,omitempty"`
	SalesRep    string       `json:"salesRep,omitempty"`
	Status      string       `json:"status,omitempty"`
	TopN        int          `json:"topN"`
	Fields      []string     `json:"fields"`
}

func General() Descriptor {
	return Descriptor{Intent: IntentGeneral, TopN: 1, Fields: []string{}}
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// ParseDescriptor turns raw translator output into a Descriptor. It never
// fails: anything it cannot read becomes the general intent.
func ParseDescriptor(raw string) Descriptor {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(raw)
		if rerr != nil {
			return General()
		}
		if err := json.Unmarshal([]byte(repaired), &m); err != nil {
			return General()
		}
	}
	return FromMap(m)
}

// FromMap validates a loosely typed descriptor, filling every field with
// its default.
func FromMap(m map[string]any) Descriptor {
	d := General()
	if m == nil {
		return d
	}

	if in, ok := knownIntents[strings.ToLower(str(m["intent"]))]; ok {
		d.Intent = in
	}

	// an unreadable date stays as given so it still constrains (and matches nothing)
	if raw := str(m["date"]); raw != "" {
		d.Date = orders.NormalizeDate(raw)
		if d.Date == "" {
			d.Date = raw
		}
	}

	if y := str(m["year"]); yearRe.MatchString(y) {
		d.Year = y
	}

	d.GPThreshold = gpThreshold(m["gpThreshold"])
	d.Customer = str(m["customer"])
	d.SalesRep = str(m["salesRep"])
	d.Status = str(m["status"])

	if n := cast.ToInt(m["topN"]); n > 0 {
		d.TopN = n
	}

	if fs, ok := m["fields"].([]any); ok {
		for _, f := range fs {
			if s := str(f); s != "" {
				d.Fields = append(d.Fields, s)
			}
		}
	}

	return d
}

func gpThreshold(v any) *GPThreshold {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	op := str(m["operator"])
	if op == "" || m["value"] == nil {
		return nil
	}
	val, ok := signedNumber(m["value"])
	if !ok {
		return nil
	}
	return &GPThreshold{Operator: op, Value: val}
}

// signedNumber parses like orders.ToNumber but keeps the sign and reports
// failure instead of defaulting to 0.
func signedNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		v = strings.NewReplacer("%", "", ",", "").Replace(strings.TrimSpace(s))
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func str(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
