// Package approval holds the two-step admin interaction: pressing Approve on
// a payment request arms a per-admin pending context, the next text message
// from that admin supplies the credit amount and resolves the request.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/DahaitPrince/credits-bot/internal/domain/payments"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotAwaiting  = errors.New("no approval awaiting an amount")
	ErrBadAmount    = errors.New("credit amount is not an integer")
)

// Store is the transactional approve operation of the request store.
type Store interface {
	Approve(ctx context.Context, txid string, credits int64) (*payments.Request, error)
}

// Pending is the request an admin is in the middle of approving.
type Pending struct {
	UserID string
	TxID   string
}

// Result of a completed approval.
type Result struct {
	Pending Pending
	Credits int64
	Request *payments.Request
}

// Coordinator keeps at most one pending context per admin. The map is
// process-local: losing it on restart only costs the admin a re-click.
type Coordinator struct {
	adminID int64
	store   Store

	mu      sync.Mutex
	pending map[int64]Pending
}

func New(adminID int64, store Store) *Coordinator {
	return &Coordinator{
		adminID: adminID,
		store:   store,
		pending: make(map[int64]Pending),
	}
}

// Begin arms the awaiting-amount state for (userID, txid). Starting a second
// approval while one is in flight overwrites it; the abandoned context is
// returned so the caller can tell the admin.
func (c *Coordinator) Begin(actor int64, userID, txid string) (*Pending, error) {
	if actor != c.adminID {
		return nil, ErrUnauthorized
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var prev *Pending
	if p, ok := c.pending[actor]; ok {
		cp := p
		prev = &cp
	}
	c.pending[actor] = Pending{UserID: userID, TxID: txid}
	return prev, nil
}

// Awaiting reports whether the actor has an armed pending context.
func (c *Coordinator) Awaiting(actor int64) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[actor]
	return p, ok
}

// SubmitAmount consumes the actor's next text message as the credit amount.
// A non-integer keeps the context armed so the admin can just retype the
// number. The context is cleared on success and when the request turns out to
// be already resolved; any other storage failure keeps it armed for a manual
// retry.
func (c *Coordinator) SubmitAmount(ctx context.Context, actor int64, text string) (*Result, error) {
	if actor != c.adminID {
		return nil, ErrUnauthorized
	}

	c.mu.Lock()
	p, ok := c.pending[actor]
	c.mu.Unlock()
	if !ok {
		return nil, ErrNotAwaiting
	}

	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, text)
	}

	req, err := c.store.Approve(ctx, p.TxID, n)
	if err != nil {
		if errors.Is(err, payments.ErrNoPendingRequest) {
			c.clear(actor, p)
		}
		return nil, err
	}

	c.clear(actor, p)
	return &Result{Pending: p, Credits: n, Request: req}, nil
}

// clear drops the context only if it is still the one we acted on; a Begin
// that raced in between wins.
func (c *Coordinator) clear(actor int64, p Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.pending[actor]; ok && cur == p {
		delete(c.pending, actor)
	}
}
