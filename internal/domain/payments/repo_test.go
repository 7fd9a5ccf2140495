package payments_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DahaitPrince/credits-bot/internal/domain/ledger"
	"github.com/DahaitPrince/credits-bot/internal/domain/payments"
)

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		txid TEXT NOT NULL,
		credits BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func testRepos(t *testing.T) (*payments.Repo, *ledger.Repo) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	for _, q := range schemaDDL {
		if _, err := pool.Exec(context.Background(), q); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	ledgerRepo := ledger.NewRepo(pool)
	return payments.NewRepo(pool, ledgerRepo), ledgerRepo
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestApproveCreditsBalanceAtomically(t *testing.T) {
	ctx := context.Background()
	repo, ledgerRepo := testRepos(t)
	uid, txid := unique("u"), unique("abc123")

	req, err := repo.Submit(ctx, uid, txid)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != payments.StatusPending || req.Credits != 0 {
		t.Fatalf("fresh request must be pending with 0 credits, got %+v", req)
	}

	approved, err := repo.Approve(ctx, txid, 25)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != payments.StatusApproved || approved.Credits != 25 {
		t.Fatalf("expected approved/25, got %+v", approved)
	}

	bal, err := ledgerRepo.GetBalance(ctx, uid)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 25 {
		t.Fatalf("expected balance 25 right after approve, got %d", bal)
	}

	stored, err := repo.GetByTxID(ctx, txid)
	if err != nil {
		t.Fatalf("get by txid: %v", err)
	}
	if stored == nil || stored.Status != payments.StatusApproved || stored.Credits != 25 {
		t.Fatalf("stored row: %+v", stored)
	}
}

func TestRejectLeavesBalance(t *testing.T) {
	ctx := context.Background()
	repo, ledgerRepo := testRepos(t)
	uid, txid := unique("u"), unique("xyz999")

	if err := ledgerRepo.EnsureUser(ctx, uid); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := repo.Submit(ctx, uid, txid); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rejected, err := repo.Reject(ctx, txid)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != payments.StatusRejected {
		t.Fatalf("expected rejected, got %+v", rejected)
	}

	bal, err := ledgerRepo.GetBalance(ctx, uid)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("reject must not change balances, got %d", bal)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	ctx := context.Background()
	repo, ledgerRepo := testRepos(t)
	uid, txid := unique("u"), unique("final")

	if _, err := repo.Submit(ctx, uid, txid); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := repo.Approve(ctx, txid, 10); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := repo.Approve(ctx, txid, 99); !errors.Is(err, payments.ErrNoPendingRequest) {
		t.Fatalf("second approve: expected ErrNoPendingRequest, got %v", err)
	}
	if _, err := repo.Reject(ctx, txid); !errors.Is(err, payments.ErrNoPendingRequest) {
		t.Fatalf("reject after approve: expected ErrNoPendingRequest, got %v", err)
	}

	bal, err := ledgerRepo.GetBalance(ctx, uid)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 10 {
		t.Fatalf("failed resolutions must not touch the balance, got %d", bal)
	}
}

func TestResolveUnknownTxID(t *testing.T) {
	ctx := context.Background()
	repo, _ := testRepos(t)

	if _, err := repo.Approve(ctx, unique("missing"), 5); !errors.Is(err, payments.ErrNoPendingRequest) {
		t.Fatalf("approve: expected ErrNoPendingRequest, got %v", err)
	}
	if _, err := repo.Reject(ctx, unique("missing")); !errors.Is(err, payments.ErrNoPendingRequest) {
		t.Fatalf("reject: expected ErrNoPendingRequest, got %v", err)
	}
}

func TestNewestPendingRowWins(t *testing.T) {
	ctx := context.Background()
	repo, _ := testRepos(t)
	uid, txid := unique("u"), unique("dup")

	first, err := repo.Submit(ctx, uid, txid)
	if err != nil {
		t.Fatalf("submit first: %v", err)
	}
	second, err := repo.Submit(ctx, uid, txid)
	if err != nil {
		t.Fatalf("submit second: %v", err)
	}

	approved, err := repo.Approve(ctx, txid, 5)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ID != second.ID {
		t.Fatalf("expected newest row %d to be approved, got %d", second.ID, approved.ID)
	}

	// the older duplicate is still pending and resolves next
	rejected, err := repo.Reject(ctx, txid)
	if err != nil {
		t.Fatalf("reject older duplicate: %v", err)
	}
	if rejected.ID != first.ID {
		t.Fatalf("expected older row %d to be rejected, got %d", first.ID, rejected.ID)
	}
}
