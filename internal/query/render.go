package query

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

const (
	currencySymbol = "₱"
	noMatch        = "No matching orders found."
)

var printer = message.NewPrinter(language.English)

// defaultFields are rendered when the descriptor names none.
var defaultFields = []string{"orderNumber", "gpRate", "amount"}

// FormatCurrency renders d as ₱1,234.50.
func FormatCurrency(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return currencySymbol + printer.Sprintf("%.2f", f)
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Project renders the named fields of r as "name: value" pairs joined by " - ".
func Project(r orders.Record, fields []string) string {
	if len(fields) == 0 {
		fields = defaultFields
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fieldValue(r, f))
	}
	return strings.Join(parts, " - ")
}

func fieldValue(r orders.Record, name string) string {
	var v string
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "id", "identity":
		v = r.ID
	case "ordernumber":
		v = r.OrderNumber
	case "datecreated", "date":
		v = r.DateCreated
	case "amount":
		return FormatCurrency(decimal.NewFromFloat(r.Amount))
	case "gprate", "gp":
		return FormatPercent(r.GPRate)
	case "status":
		v = r.Status
	case "division":
		v = r.Division
	case "salesrep":
		v = r.SalesRep
	case "customer":
		v = r.Customer
	case "contractdescription":
		v = r.ContractDescription
	case "memo":
		v = r.Memo
	}
	if v == "" {
		return "N/A"
	}
	return v
}

func renderCount(c CountResult) string {
	return fmt.Sprintf("Total orders: %d\nTotal amount: %s\nHighest GP: %s",
		c.Orders, FormatCurrency(c.TotalAmount), FormatPercent(c.HighestGP))
}

func renderRanking(groups []GroupTotal) string {
	if len(groups) == 0 {
		return noMatch
	}
	lines := make([]string, 0, len(groups))
	for i, g := range groups {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, g.Key, FormatCurrency(g.Total)))
	}
	return strings.Join(lines, "\n")
}

func renderMonthly(rep, year string, months []GroupTotal) string {
	if len(months) == 0 {
		return fmt.Sprintf("No data found for %s in %s.", rep, year)
	}
	lines := make([]string, 0, len(months)+1)
	lines = append(lines, fmt.Sprintf("Monthly totals for %s in %s:", rep, year))
	for _, m := range months {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Key, FormatCurrency(m.Total)))
	}
	return strings.Join(lines, "\n")
}
