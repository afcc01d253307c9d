package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
	txcontext "locadora/pkg/tx"
)

// OutboxStore implements Store using the transactional outbox pattern. Events
// are written to audit_outbox in the same transaction as the domain change and
// published to Kafka by the outbox worker.
type OutboxStore struct {
	db *sql.DB
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *OutboxStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
	ItemID    string `json:"item_id,omitempty"`
	LoanID    string `json:"loan_id,omitempty"`
	Amount    string `json:"amount,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *OutboxStore) Append(ctx context.Context, event Event) error {
	entryID := uuid.New()

	p := payload{
		ID:        entryID.String(),
		Action:    string(event.Action),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		RequestID: event.RequestID,
	}
	if !event.UserID.IsNil() {
		p.UserID = event.UserID.String()
	}
	if !event.ItemID.IsNil() {
		p.ItemID = event.ItemID.String()
	}
	if !event.LoanID.IsNil() {
		p.LoanID = event.LoanID.String()
	}
	if !event.Amount.IsZero() {
		p.Amount = event.Amount.String()
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// The aggregate is the user the action concerns; falls back to the entry
	// itself for user-less actions so the column stays non-null.
	aggregateID := entryID
	if !event.UserID.IsNil() {
		aggregateID = uuid.UUID(event.UserID)
	}

	const query = `
		INSERT INTO audit_outbox (id, aggregate_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.execer(ctx).ExecContext(ctx, query,
		entryID, aggregateID, string(event.Action), body, time.Now()); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *OutboxStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	const query = `
		SELECT payload FROM audit_outbox
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox entries: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		event, err := decodePayload(body)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// OutboxEntry is one pending row awaiting publication.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	Action      string
	Payload     []byte
}

// Pending returns up to limit unsent entries, oldest first.
func (s *OutboxStore) Pending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	const query = `
		SELECT id, aggregate_id, action, payload FROM audit_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox entries: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.Action, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkSent records successful publication of an entry.
func (s *OutboxStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET sent_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark outbox entry sent: %w", err)
	}
	return nil
}

func decodePayload(body []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	event := Event{
		Action:    Action(p.Action),
		RequestID: p.RequestID,
	}
	if t, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = t
	}
	if p.UserID != "" {
		if id, err := uuid.Parse(p.UserID); err == nil {
			event.UserID = domain.UserID(id)
		}
	}
	if p.ItemID != "" {
		if id, err := uuid.Parse(p.ItemID); err == nil {
			event.ItemID = domain.ItemID(id)
		}
	}
	if p.LoanID != "" {
		if id, err := uuid.Parse(p.LoanID); err == nil {
			event.LoanID = domain.LoanID(id)
		}
	}
	if p.Amount != "" {
		if amount, err := decimal.NewFromString(p.Amount); err == nil {
			event.Amount = amount
		}
	}
	return event, nil
}
