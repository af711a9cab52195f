package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// cashflowRepository implements domain.CashflowRepository
type cashflowRepository struct {
	db *DB
}

// NewCashflowRepository creates a new cashflow repository
func NewCashflowRepository(db *DB) domain.CashflowRepository {
	return &cashflowRepository{db: db}
}

// ListFunds returns the distinct fund names, sorted
func (r *cashflowRepository) ListFunds(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT fund FROM cashflows ORDER BY fund`)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	funds := make([]string, 0)
	for rows.Next() {
		var fund string
		if err := rows.Scan(&fund); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	return funds, rows.Err()
}

// ListByFund retrieves all cashflow rows of a fund ordered by date then ID
func (r *cashflowRepository) ListByFund(ctx context.Context, fund string) ([]domain.CashflowRecord, error) {
	query := `
		SELECT id, fund, date, cashflow_type, local_currency, amount_local, amount_base, base_currency
		FROM cashflows
		WHERE fund = ?
		ORDER BY date, id
	`

	rows, err := r.db.QueryContext(ctx, query, fund)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashflows: %w", err)
	}
	defer rows.Close()

	var records []domain.CashflowRecord
	for rows.Next() {
		var (
			rec                     domain.CashflowRecord
			date, cashflowType      string
			amountLocal, amountBase string
		)
		err := rows.Scan(&rec.ID, &rec.Fund, &date, &cashflowType, &rec.LocalCurrency, &amountLocal, &amountBase, &rec.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashflow: %w", err)
		}

		if rec.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse date of cashflow %d: %w", rec.ID, err)
		}
		rec.Type = domain.CashflowType(cashflowType)
		if rec.AmountLocal, err = decimal.NewFromString(amountLocal); err != nil {
			return nil, fmt.Errorf("failed to parse amount_local: %w", err)
		}
		if rec.AmountBase, err = decimal.NewFromString(amountBase); err != nil {
			return nil, fmt.Errorf("failed to parse amount_base: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cashflows: %w", err)
	}
	// release the single connection before ListFunds needs it
	rows.Close()

	if len(records) == 0 {
		funds, err := r.ListFunds(ctx)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %q (available: %v)", domain.ErrFundNotFound, fund, funds)
	}
	return records, nil
}

// Create stores cashflow rows in a single database transaction.
// Rows without an ID get the next rowid.
func (r *cashflowRepository) Create(ctx context.Context, records []domain.CashflowRecord) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO cashflows (id, fund, date, cashflow_type, local_currency, amount_local, amount_base, base_currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var id sql.NullInt64
		if rec.ID != 0 {
			id = sql.NullInt64{Int64: rec.ID, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			id,
			rec.Fund,
			rec.Date.String(),
			string(rec.Type),
			rec.LocalCurrency,
			rec.AmountLocal.String(),
			rec.AmountBase.String(),
			rec.BaseCurrency,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cashflow %d: %w", rec.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
