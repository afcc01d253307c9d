// Package postgres implements the loan store on PostgreSQL. The seq column
// preserves insertion order for the scans the debt queries depend on.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"locadora/internal/loan"
	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
	txcontext "locadora/pkg/tx"
)

const loanColumns = `id, user_id, item_id, quantity, start_date, planned_due_date, return_date, renewals, status, fine`

type Store struct {
	pool *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{pool: db}
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) db(ctx context.Context) dbtx {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Store) Insert(ctx context.Context, l *loan.Loan) error {
	const query = `
		INSERT INTO loans (id, user_id, item_id, quantity, start_date, planned_due_date, return_date, renewals, status, fine)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db(ctx).ExecContext(ctx, query,
		uuid.UUID(l.ID), uuid.UUID(l.UserID), uuid.UUID(l.ItemID), l.Quantity,
		l.StartDate, l.PlannedDueDate, nullableDate(l.ReturnDate),
		l.Renewals, string(l.Status), l.Fine)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, l *loan.Loan) error {
	const query = `
		UPDATE loans
		SET planned_due_date = $2, return_date = $3, renewals = $4, status = $5, fine = $6
		WHERE id = $1`
	res, err := s.db(ctx).ExecContext(ctx, query,
		uuid.UUID(l.ID), l.PlannedDueDate, nullableDate(l.ReturnDate),
		l.Renewals, string(l.Status), l.Fine)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.LoanID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return l, nil
}

func (s *Store) List(ctx context.Context) ([]*loan.Loan, error) {
	return s.queryLoans(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY seq`)
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]*loan.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY seq`,
		uuid.UUID(userID))
}

func (s *Store) ListByUserAndStatusIn(ctx context.Context, userID domain.UserID, statuses []loan.Status) ([]*loan.Loan, error) {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 AND status = ANY($2) ORDER BY seq`,
		uuid.UUID(userID), pq.Array(names))
}

func (s *Store) ListUnpaidFines(ctx context.Context, userID domain.UserID) ([]*loan.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 AND fine > 0 ORDER BY seq`,
		uuid.UUID(userID))
}

func (s *Store) ListUnpaidFinesAll(ctx context.Context) ([]*loan.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE fine > 0 ORDER BY seq`)
}

func (s *Store) ClearFinesByUser(ctx context.Context, userID domain.UserID) error {
	_, err := s.db(ctx).ExecContext(ctx,
		`UPDATE loans SET fine = 0 WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("clear loan fines: %w", err)
	}
	return nil
}

func (s *Store) ListActiveByItem(ctx context.Context, itemID domain.ItemID) ([]*loan.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE item_id = $1 AND status = $2 ORDER BY seq`,
		uuid.UUID(itemID), string(loan.StatusActive))
}

func (s *Store) ExistsByItem(ctx context.Context, itemID domain.ItemID) (bool, error) {
	var exists bool
	err := s.db(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM loans WHERE item_id = $1)`, uuid.UUID(itemID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check loans by item: %w", err)
	}
	return exists, nil
}

func (s *Store) SumActiveQuantities(ctx context.Context) (map[domain.ItemID]int, error) {
	rows, err := s.db(ctx).QueryContext(ctx,
		`SELECT item_id, COALESCE(SUM(quantity), 0) FROM loans WHERE status = $1 GROUP BY item_id`,
		string(loan.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("sum active quantities: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ItemID]int)
	for rows.Next() {
		var (
			id  uuid.UUID
			sum int
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan quantity row: %w", err)
		}
		out[domain.ItemID(id)] = sum
	}
	return out, rows.Err()
}

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]*loan.Loan, error) {
	rows, err := s.db(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var out []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(row scanner) (*loan.Loan, error) {
	var (
		l          loan.Loan
		id         uuid.UUID
		userID     uuid.UUID
		itemID     uuid.UUID
		returnDate sql.NullTime
		status     string
	)
	if err := row.Scan(&id, &userID, &itemID, &l.Quantity, &l.StartDate,
		&l.PlannedDueDate, &returnDate, &l.Renewals, &status, &l.Fine); err != nil {
		return nil, err
	}
	l.ID = domain.LoanID(id)
	l.UserID = domain.UserID(userID)
	l.ItemID = domain.ItemID(itemID)
	l.StartDate = loan.DateOnly(l.StartDate)
	l.PlannedDueDate = loan.DateOnly(l.PlannedDueDate)
	if returnDate.Valid {
		d := loan.DateOnly(returnDate.Time)
		l.ReturnDate = &d
	}
	parsed, err := loan.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	l.Status = parsed
	return &l, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
