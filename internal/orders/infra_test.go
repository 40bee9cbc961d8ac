package orders

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS sales_orders(.|\n)*amount\s+DOUBLE PRECISION(.|\n)*gp_rate\s+DOUBLE PRECISION`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewRepo(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	recs := []Record{
		{ID: "1", OrderNumber: "SO-1", DateCreated: "2024-03-01", Amount: 1000, GPRate: 60, Status: "BILLED",
			Division: "Retail", SalesRep: "Jane", Customer: "Acme"},
		{ID: "2", OrderNumber: "SO-2", Amount: 500, GPRate: 40},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sales_orders")).
		WithArgs("1", "SO-1", "2024-03-01", 1000.0, 60.0, "BILLED", "Retail", "Jane", "Acme", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WithArgs("2", "SO-2", "", 500.0, 40.0, "", "", "", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewRepo(db).Upsert(context.Background(), recs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpsertRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sales_orders")).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err = NewRepo(db).Upsert(context.Background(), []Record{{ID: "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpsertEmptyBatchIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewRepo(db).Upsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_LoadAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "order_number", "date_created", "amount", "gp_rate", "status",
		"division", "sales_rep", "customer", "contract_description", "memo"}).
		AddRow("1", "SO-1", "2024-03-01", 1000.0, 60.0, "BILLED", "Retail", "Jane", "Acme", "", "").
		AddRow("2", "SO-2", "2024-03-02", 500.0, 40.0, "BILLED", "Retail", "Jane", "Acme", "support", "memo")

	mock.ExpectQuery(regexp.QuoteMeta("FROM sales_orders")).WillReturnRows(rows)

	got, err := NewRepo(db).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Record{ID: "1", OrderNumber: "SO-1", DateCreated: "2024-03-01", Amount: 1000, GPRate: 60,
		Status: "BILLED", Division: "Retail", SalesRep: "Jane", Customer: "Acme"}, got[0])
	assert.Equal(t, "support", got[1].ContractDescription)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_LoadAllKeepsFullPrecision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "order_number", "date_created", "amount", "gp_rate", "status",
		"division", "sales_rep", "customer", "contract_description", "memo"}).
		AddRow("1", "SO-1", "2024-03-01", 1234.5678, 150000.125, "", "", "", "", "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM sales_orders")).WillReturnRows(rows)

	got, err := NewRepo(db).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1234.5678, got[0].Amount)
	assert.Equal(t, 150000.125, got[0].GPRate)
}
