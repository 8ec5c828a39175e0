package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Credit Type = "credit"
	Debit  Type = "debit"
)

type (
	// Type is the caller-declared direction of a transaction. Only the two
	// enumerated values are accepted, case-sensitive.
	Type string

	Money struct {
		Cents int64
	}

	// Transaction is one ledger entry. Rows are immutable after creation.
	Transaction struct {
		ID        string
		Title     string
		Amount    Money // sign-normalized: positive credit, negative debit
		SessionID string
		CreatedAt time.Time
	}

	// Summary is the signed sum of a session's transactions.
	Summary struct {
		Amount Money
	}

	// CreateInput carries the caller-supplied values for a new transaction,
	// before normalization.
	CreateInput struct {
		Title  string
		Amount float64
		Type   Type
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid type")
	ErrInvalidID     = errors.New("invalid transaction id")
)

// ValidationError reports which input field failed validation. It wraps one
// of the sentinel errors above so callers can test with errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (t Type) IsValid() bool {
	return t == Credit || t == Debit
}

// NormalizedCents applies the sign convention: credits keep the supplied
// sign, debits are negated. A negative amount with type credit is accepted
// as-is; callers declared the sign, the ledger stores it.
func (t Type) NormalizedCents(cents int64) int64 {
	if t == Debit {
		return -cents
	}
	return cents
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	// The cent value must fit int64, or ToCents would wrap silently.
	if math.Abs(in.Amount) > math.MaxInt64/100 {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !in.Type.IsValid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	return nil
}

// Normalized converts the input into the stored amount, in cents.
func (in CreateInput) Normalized() Money {
	return Money{Cents: in.Type.NormalizedCents(ToCents(in.Amount))}
}
