package orders

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS sales_orders (
		id                   TEXT PRIMARY KEY,
		order_number         TEXT NOT NULL DEFAULT '',
		date_created         TEXT NOT NULL DEFAULT '',
		amount               DOUBLE PRECISION NOT NULL DEFAULT 0,
		gp_rate              DOUBLE PRECISION NOT NULL DEFAULT 0,
		status               TEXT NOT NULL DEFAULT '',
		division             TEXT NOT NULL DEFAULT '',
		sales_rep            TEXT NOT NULL DEFAULT '',
		customer             TEXT NOT NULL DEFAULT '',
		contract_description TEXT NOT NULL DEFAULT '',
		memo                 TEXT NOT NULL DEFAULT '',
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

const upsertSQL = `
	INSERT INTO sales_orders (id, order_number, date_created, amount, gp_rate, status,
		division, sales_rep, customer, contract_description, memo)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		order_number = EXCLUDED.order_number,
		date_created = EXCLUDED.date_created,
		amount = EXCLUDED.amount,
		gp_rate = EXCLUDED.gp_rate,
		status = EXCLUDED.status,
		division = EXCLUDED.division,
		sales_rep = EXCLUDED.sales_rep,
		customer = EXCLUDED.customer,
		contract_description = EXCLUDED.contract_description,
		memo = EXCLUDED.memo,
		updated_at = now()`

const selectAllSQL = `
	SELECT id, order_number, date_created, amount, gp_rate, status,
		division, sales_rep, customer, contract_description, memo
	FROM sales_orders
	ORDER BY date_created ASC, id ASC`

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaSQL)
	return err
}

// Upsert writes the batch in one transaction; a failure rolls back the whole batch.
func (r *repo) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsertSQL,
			rec.ID,
			rec.OrderNumber,
			rec.DateCreated,
			rec.Amount,
			rec.GPRate,
			rec.Status,
			rec.Division,
			rec.SalesRep,
			rec.Customer,
			rec.ContractDescription,
			rec.Memo,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (r *repo) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.OrderNumber,
			&rec.DateCreated,
			&rec.Amount,
			&rec.GPRate,
			&rec.Status,
			&rec.Division,
			&rec.SalesRep,
			&rec.Customer,
			&rec.ContractDescription,
			&rec.Memo,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}
