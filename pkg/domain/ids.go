// Package domain provides typed identifiers shared across services. Wrapping
// uuid.UUID in distinct types makes cross-entity mixups a compile error.
package domain

import (
	"github.com/google/uuid"

	dErrors "locadora/pkg/domainerrors"
)

type UserID uuid.UUID

type ItemID uuid.UUID

type LoanID uuid.UUID

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string { return uuid.UUID(id).String() }
func (id LoanID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id LoanID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewUserID() UserID { return UserID(uuid.New()) }
func NewItemID() ItemID { return ItemID(uuid.New()) }
func NewLoanID() LoanID { return LoanID(uuid.New()) }

// ParseUserID validates the invariant that IDs are valid, non-nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item id")
	return ItemID(u), err
}

func ParseLoanID(s string) (LoanID, error) {
	u, err := parseUUID(s, "loan id")
	return LoanID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" must not be nil")
	}
	return u, nil
}
