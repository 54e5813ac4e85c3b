// Package sqlite persists the loan record and its schedule in a SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"loanschedule/internal/core"
	applog "loanschedule/internal/log"
	"loanschedule/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db     *sql.DB
	logger *applog.Logger
}

func NewRepository(dbPath string, logger *applog.Logger) (*Repository, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentStorage)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save upserts the record and replaces the stored schedule in one
// transaction.
func (r *Repository) Save(ctx context.Context, rec store.Record, sched core.Schedule) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loan_records (name, principal, total_months, annual_rate_percent, monthly_payment)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			principal = excluded.principal,
			total_months = excluded.total_months,
			annual_rate_percent = excluded.annual_rate_percent,
			monthly_payment = excluded.monthly_payment,
			saved_at = CURRENT_TIMESTAMP`,
		store.RecordKey,
		rec.Principal.String(),
		rec.TotalMonths,
		rec.AnnualRatePercent.String(),
		rec.MonthlyPayment.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert loan record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_rows WHERE record_name = ?`, store.RecordKey); err != nil {
		return fmt.Errorf("clear schedule rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_rows (record_name, period, beginning_balance_cents, payment_cents,
			interest_cents, principal_cents, ending_balance_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare schedule insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range sched.Rows {
		_, err := stmt.ExecContext(ctx, store.RecordKey, row.Period,
			row.BeginningBalance.Cents, row.Payment.Cents, row.Interest.Cents,
			row.Principal.Cents, row.EndingBalance.Cents)
		if err != nil {
			return fmt.Errorf("insert schedule row %d: %w", row.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	applog.FromContext(ctx, r.logger).WithComponent(applog.ComponentStorage).
		InfoContext(ctx, "Loan record saved to SQLite",
			applog.FieldOperation, applog.OpSave,
			applog.FieldKey, store.RecordKey,
		applog.FieldRows, len(sched.Rows))
	return nil
}

func (r *Repository) Load(ctx context.Context) (store.Record, error) {
	var rec store.Record
	var principal, annualRate, payment string
	err := r.db.QueryRowContext(ctx, `
		SELECT principal, total_months, annual_rate_percent, monthly_payment
		FROM loan_records WHERE name = ?`, store.RecordKey,
	).Scan(&principal, &rec.TotalMonths, &annualRate, &payment)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get loan record: %w", err)
	}

	if rec.Principal, err = decimal.NewFromString(principal); err != nil {
		return store.Record{}, fmt.Errorf("parse principal %q: %w", principal, err)
	}
	if rec.AnnualRatePercent, err = decimal.NewFromString(annualRate); err != nil {
		return store.Record{}, fmt.Errorf("parse annual rate %q: %w", annualRate, err)
	}
	if rec.MonthlyPayment, err = decimal.NewFromString(payment); err != nil {
		return store.Record{}, fmt.Errorf("parse monthly payment %q: %w", payment, err)
	}
	if err := rec.Validate(); err != nil {
		return store.Record{}, err
	}
	applog.FromContext(ctx, r.logger).WithComponent(applog.ComponentStorage).
		DebugContext(ctx, "Loan record loaded from SQLite", applog.FieldOperation, applog.OpLoad, applog.FieldKey, store.RecordKey)
	return rec, nil
}

// LoadRows returns the schedule rows saved with the record, ordered by
// period.
func (r *Repository) LoadRows(ctx context.Context) ([]core.ScheduleRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period, beginning_balance_cents, payment_cents, interest_cents,
			principal_cents, ending_balance_cents
		FROM schedule_rows WHERE record_name = ? ORDER BY period`, store.RecordKey)
	if err != nil {
		return nil, fmt.Errorf("query schedule rows: %w", err)
	}
	defer rows.Close()

	var out []core.ScheduleRow
	for rows.Next() {
		var row core.ScheduleRow
		if err := rows.Scan(&row.Period, &row.BeginningBalance.Cents, &row.Payment.Cents,
			&row.Interest.Cents, &row.Principal.Cents, &row.EndingBalance.Cents); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule rows: %w", err)
	}
	return out, nil
}
