package orders

import "context"

// Record is a sales order after normalization.
type Record struct {
	ID                  string  `json:"id"`
	OrderNumber         string  `json:"orderNumber"`
	DateCreated         string  `json:"dateCreated"`
	Amount              float64 `json:"amount"`
	GPRate              float64 `json:"gpRate"`
	Status              string  `json:"status"`
	Division            string  `json:"division"`
	SalesRep            string  `json:"salesRep"`
	Customer            string  `json:"customer"`
	ContractDescription string  `json:"contractDescription"`
	Memo                string  `json:"memo"`
}

// PageQuery selects one page of one calendar year from the upstream source.
type PageQuery struct {
	Year   int
	Limit  int
	Offset int
}

// Source — upstream ERP, paged
type Source interface {
	FetchPage(ctx context.Context, q PageQuery) ([]map[string]any, error)
}

// Repo — durable mirror of the sales orders, keyed by Record.ID
type Repo interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, records []Record) error
	LoadAll(ctx context.Context) ([]Record, error)
}
