package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// addCreditsSQL creates the row on first touch, so a direct grant to a user
// who never pressed /start still lands.
const addCreditsSQL = `
	INSERT INTO users (user_id, credits) VALUES ($1, $2)
	ON CONFLICT (user_id)
	DO UPDATE SET credits = users.credits + EXCLUDED.credits
`

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// EnsureUser inserts a zero-balance row if the user is unknown.
func (r *Repo) EnsureUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (user_id, credits) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *Repo) AddCredits(ctx context.Context, userID string, amount int64) error {
	_, err := r.pool.Exec(ctx, addCreditsSQL, userID, amount)
	return err
}

// AddCreditsTx is AddCredits inside an already-open transaction. The payments
// repo uses it to commit the approval and the balance increment together.
func (r *Repo) AddCreditsTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) error {
	_, err := tx.Exec(ctx, addCreditsSQL, userID, amount)
	return err
}

func (r *Repo) GetBalance(ctx context.Context, userID string) (int64, error) {
	row := r.pool.QueryRow(ctx, `SELECT credits FROM users WHERE user_id = $1`, userID)
	var credits int64
	if err := row.Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return credits, nil
}
