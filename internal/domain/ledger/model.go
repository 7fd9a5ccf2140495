package ledger

// User is one row of the credit ledger. UserID is the Telegram user id as an
// opaque string; Credits never goes below zero (enforced by the schema).
type User struct {
	UserID  string
	Credits int64
}
