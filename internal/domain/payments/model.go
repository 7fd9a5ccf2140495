package payments

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a user's claim of an external payment, pending human review.
// Credits stays 0 until the admin approves and picks the amount. TxID is
// free text from the user and is not required to be unique.
type Request struct {
	ID        int64
	UserID    string
	TxID      string
	Credits   int64
	Status    Status
	CreatedAt time.Time
}
