// Package audit records loan-lifecycle and debt actions. Events are
// transport-agnostic: stores and sinks decide where they end up (memory for
// the zero-config mode, a Postgres outbox drained to Kafka in production).
package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"locadora/pkg/domain"
)

// Action names what happened. Values are part of the published contract.
type Action string

const (
	ActionLoanCreated  Action = "loan_created"
	ActionLoanReturned Action = "loan_returned"
	ActionLoanRenewed  Action = "loan_renewed"
	ActionFineAccrued  Action = "fine_accrued"
	ActionDebtSettled  Action = "debt_settled"
	ActionUserCreated  Action = "user_created"
	ActionUserDeleted  Action = "user_deleted"
	ActionItemCreated  Action = "item_created"
	ActionItemDeleted  Action = "item_deleted"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time
	Action    Action
	UserID    domain.UserID
	ItemID    domain.ItemID
	LoanID    domain.LoanID
	// Amount carries the fine or settled debt for money-moving actions.
	Amount    decimal.Decimal
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
