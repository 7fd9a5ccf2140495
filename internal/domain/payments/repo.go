package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DahaitPrince/credits-bot/internal/domain/ledger"
)

// ErrNoPendingRequest is returned when approve/reject finds no pending row
// for the txid: either it was never submitted or it is already resolved.
// Resolved requests are terminal and cannot be resolved again.
var ErrNoPendingRequest = errors.New("no pending payment request")

const requestColumns = `id, user_id, txid, credits, status, created_at`

// newestPendingByTxID picks the row approve/reject act on. txid is not
// unique, so the newest pending submission wins; id breaks created_at ties.
const newestPendingByTxID = `
	SELECT id FROM payments
	WHERE txid = $1 AND status = 'pending'
	ORDER BY created_at DESC, id DESC
	LIMIT 1
`

type Repo struct {
	pool   *pgxpool.Pool
	ledger *ledger.Repo
}

func NewRepo(pool *pgxpool.Pool, ledgerRepo *ledger.Repo) *Repo {
	return &Repo{pool: pool, ledger: ledgerRepo}
}

func (r *Repo) Submit(ctx context.Context, userID, txid string) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (user_id, txid, credits, status)
		VALUES ($1, $2, 0, 'pending')
		RETURNING `+requestColumns, userID, txid)
	return scanRequest(row)
}

// Approve flips the newest pending row for txid to approved, records the
// admin-chosen amount and increments the owner's balance. Both writes happen
// in one transaction: a concurrent balance read never sees one without the
// other.
func (r *Repo) Approve(ctx context.Context, txid string, credits int64) (*Request, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE payments SET status = 'approved', credits = $2
		WHERE id = (`+newestPendingByTxID+`)
		RETURNING `+requestColumns, txid, credits)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingRequest
		}
		return nil, err
	}

	if err := r.ledger.AddCreditsTx(ctx, tx, req.UserID, credits); err != nil {
		return nil, fmt.Errorf("add credits: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return req, nil
}

// Reject flips the newest pending row for txid to rejected. Balances are
// never touched.
func (r *Repo) Reject(ctx context.Context, txid string) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE payments SET status = 'rejected'
		WHERE id = (`+newestPendingByTxID+`)
		RETURNING `+requestColumns, txid)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingRequest
		}
		return nil, err
	}
	return req, nil
}

// GetByTxID returns the newest request for txid regardless of status, or nil
// when none exists.
func (r *Repo) GetByTxID(ctx context.Context, txid string) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM payments
		WHERE txid = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, txid)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM payments
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.UserID, &req.TxID, &req.Credits, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	if err := row.Scan(&req.ID, &req.UserID, &req.TxID, &req.Credits, &req.Status, &req.CreatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}
