package model

import "time"

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records the money side of a grant for revenue reporting. Code
// redemptions log a zero-amount record through the same table so paid and
// free grants reconcile in one place; the record is audit only and plays no
// part in authorization.
type Payment struct {
	ID            string
	UserID        string
	Provider      string // "stripe", "flutterwave", or "access_code"
	AmountCents   int64
	Currency      string
	RefID         string
	Status        PaymentStatus
	Description   string
	OriginCodeID  *string // set for zero-cost code redemptions
	EntitlementID *string
	CreatedAt     time.Time
	PaidAt        *time.Time
}
