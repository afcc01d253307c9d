// Package postgres implements the item store on PostgreSQL. Reserve relies on
// a conditional update so the availability check and the increment are one
// atomic statement even outside an explicit transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"locadora/internal/inventory"
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

func (s *Store) Save(ctx context.Context, item *inventory.Item) error {
	const query = `
		INSERT INTO items (id, name, description, category, total_quantity, reserved)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description,
		    category = EXCLUDED.category, total_quantity = EXCLUDED.total_quantity,
		    reserved = EXCLUDED.reserved`
	_, err := s.db(ctx).ExecContext(ctx, query,
		uuid.UUID(item.ID), item.Name, item.Description, item.Category,
		item.TotalQuantity, item.Reserved)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.ItemID) (*inventory.Item, error) {
	const query = `
		SELECT id, name, description, category, total_quantity, reserved
		FROM items WHERE id = $1`
	item, err := scanItem(s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return item, nil
}

func (s *Store) List(ctx context.Context) ([]*inventory.Item, error) {
	const query = `
		SELECT id, name, description, category, total_quantity, reserved
		FROM items ORDER BY created_at, id`
	rows, err := s.db(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []*inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id domain.ItemID) error {
	res, err := s.db(ctx).ExecContext(ctx, `DELETE FROM items WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
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

// Reserve increments the reserved count only when enough stock is available.
// The WHERE clause is the compare-and-swap: a concurrent reservation that
// would over-reserve matches zero rows and surfaces ErrConflict.
func (s *Store) Reserve(ctx context.Context, id domain.ItemID, qty int) (*inventory.Item, error) {
	const query = `
		UPDATE items SET reserved = reserved + $2
		WHERE id = $1 AND reserved + $2 <= total_quantity
		RETURNING id, name, description, category, total_quantity, reserved`
	item, err := scanItem(s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id), qty))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}
	// Distinguish a missing item from insufficient stock.
	if _, ferr := s.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, sentinel.ErrConflict
}

func (s *Store) Release(ctx context.Context, id domain.ItemID, qty int) (*inventory.Item, error) {
	const query = `
		UPDATE items SET reserved = GREATEST(reserved - $2, 0)
		WHERE id = $1
		RETURNING id, name, description, category, total_quantity, reserved`
	item, err := scanItem(s.db(ctx).QueryRowContext(ctx, query, uuid.UUID(id), qty))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("release stock: %w", err)
	}
	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*inventory.Item, error) {
	var (
		item inventory.Item
		id   uuid.UUID
	)
	if err := row.Scan(&id, &item.Name, &item.Description, &item.Category,
		&item.TotalQuantity, &item.Reserved); err != nil {
		return nil, err
	}
	item.ID = domain.ItemID(id)
	return &item, nil
}
