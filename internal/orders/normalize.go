package orders

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const unknown = "Unknown"

// Each canonical field is read from the upstream name first and then from
// its own JSON name, so a serialized Record normalizes to itself.
var (
	idKeys          = []string{"internalid", "id"}
	orderNumberKeys = []string{"tranid", "orderNumber"}
	dateKeys        = []string{"trandate", "dateCreated"}
	amountKeys      = []string{"total", "amount"}
	gpRateKeys      = []string{"custbody_gp_rate", "gpRate"}
	statusKeys      = []string{"statusText", "status"}
	divisionKeys    = []string{"department", "division"}
	salesRepKeys    = []string{"salesrep", "salesRep"}
	customerKeys    = []string{"entity", "customer"}
	contractKeys    = []string{"custbody_contract_desc", "contractDescription"}
	memoKeys        = []string{"memo"}
)

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Normalize converts one raw upstream row into a Record. It never fails:
// missing or malformed values fall back to defaults.
func Normalize(raw map[string]any) Record {
	return Record{
		ID:                  text(raw, idKeys),
		OrderNumber:         orDefault(text(raw, orderNumberKeys), unknown),
		DateCreated:         NormalizeDate(text(raw, dateKeys)),
		Amount:              ToNumber(lookup(raw, amountKeys)),
		GPRate:              ToNumber(lookup(raw, gpRateKeys)),
		Status:              text(raw, statusKeys),
		Division:            orDefault(leaf(text(raw, divisionKeys)), unknown),
		SalesRep:            orDefault(text(raw, salesRepKeys), unknown),
		Customer:            orDefault(text(raw, customerKeys), unknown),
		ContractDescription: text(raw, contractKeys),
		Memo:                text(raw, memoKeys),
	}
}

// ToNumber strips "%" and "," and parses what is left as a float.
// Anything non-numeric, negative or non-finite becomes 0.
func ToNumber(v any) float64 {
	if s, ok := v.(string); ok {
		s = strings.NewReplacer("%", "", ",", "").Replace(strings.TrimSpace(s))
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// NormalizeDate returns the date as YYYY-MM-DD, or "" if it cannot be parsed.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func lookup(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func text(raw map[string]any, keys []string) string {
	v := lookup(raw, keys)
	if v == nil {
		return ""
	}
	// list-valued fields come back as {"value": ..., "text": ...}
	if m, ok := v.(map[string]any); ok {
		if t, ok := m["text"]; ok {
			v = t
		} else {
			v = m["value"]
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// leaf keeps the last segment of a hierarchical "Parent : Child" name.
func leaf(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
