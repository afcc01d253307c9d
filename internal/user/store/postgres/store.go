// Package postgres implements the user store on PostgreSQL. Queries run
// against a context-carried transaction when one is present so the store can
// join the engine's atomic units.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"locadora/internal/user"
	"locadora/pkg/domain"
	"locadora/pkg/sentinel"
	txcontext "locadora/pkg/tx"
)

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

func (s *Store) Save(ctx context.Context, u *user.User) error {
	const query = `
		INSERT INTO users (id, name, email, phone, debt)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email,
		    phone = EXCLUDED.phone, debt = EXCLUDED.debt`
	_, err := s.db(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Name, u.Email, u.Phone, u.Debt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.UserID) (*user.User, error) {
	const query = `SELECT id, name, email, phone, debt FROM users WHERE id = $1`
	row := s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Store) List(ctx context.Context) ([]*user.User, error) {
	const query = `SELECT id, name, email, phone, debt FROM users ORDER BY created_at, id`
	rows, err := s.db(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AddDebt adjusts the debt column in place. The update is relative so two
// concurrent accruals under read committed both land instead of the second
// overwriting the first with a stale total.
func (s *Store) AddDebt(ctx context.Context, id domain.UserID, amount decimal.Decimal) (decimal.Decimal, error) {
	const query = `UPDATE users SET debt = debt + $2 WHERE id = $1 RETURNING debt`
	var total decimal.Decimal
	err := s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id), amount).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, sentinel.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("add debt: %w", err)
	}
	return total, nil
}

func (s *Store) Delete(ctx context.Context, id domain.UserID) error {
	res, err := s.db(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*user.User, error) {
	var (
		u  user.User
		id uuid.UUID
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.Phone, &u.Debt); err != nil {
		return nil, err
	}
	u.ID = domain.UserID(id)
	return &u, nil
}
