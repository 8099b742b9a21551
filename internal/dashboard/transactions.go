package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
)

var ErrNothingStaged = errors.New("no status change staged")

// LoadTransactions fetches every order; search and status are applied
// locally so changing them needs no request.
func (d *Dashboard) LoadTransactions(ctx context.Context) error {
	if err := d.requireLogin(); err != nil {
		return err
	}
	txs, err := d.api.ListTransactions(ctx, "", "")
	if err != nil {
		return d.fail("Failed to fetch transactions.", err)
	}
	d.transactions.SetItems(txs)
	return nil
}

// FilterTransactions sets the search term and status filter ("all" for any)
// and returns to the first page.
func (d *Dashboard) FilterTransactions(term, status string) {
	if status == "" {
		status = catalog.StatusAll
	}
	d.transactions.SetTerm(term)
	if status != d.status {
		d.status = status
		d.transactions.SetPage(1)
	}
}

func (d *Dashboard) SetTransactionsPage(page int) {
	d.transactions.SetPage(page)
}

func (d *Dashboard) TransactionsPage() catalog.Page[domain.Transaction] {
	return d.transactions.Current()
}

// StatusUpdate is the staged status change waiting for the admin's answer.
func (d *Dashboard) StatusUpdate() *StatusUpdate {
	return d.update
}

type StatusChange struct {
	ID     int64
	Status domain.OrderStatus
}

type statusUpdater interface {
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Transaction, error)
}

// StatusUpdate holds at most one staged change. Nothing is sent until
// Confirm; Cancel drops the change without a request.
type StatusUpdate struct {
	api     statusUpdater
	refresh func(context.Context) error
	pending *StatusChange
}

// Stage replaces any previously staged change.
func (u *StatusUpdate) Stage(id int64, status string) error {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	u.pending = &StatusChange{ID: id, Status: st}
	return nil
}

func (u *StatusUpdate) Pending() (StatusChange, bool) {
	if u.pending == nil {
		return StatusChange{}, false
	}
	return *u.pending, true
}

// Confirm sends the staged change as one update and then reloads the
// transaction list. A failed update keeps the change staged.
func (u *StatusUpdate) Confirm(ctx context.Context) (*domain.Transaction, error) {
	if u.pending == nil {
		return nil, ErrNothingStaged
	}
	change := *u.pending

	tx, err := u.api.UpdateTransactionStatus(ctx, change.ID, change.Status)
	if err != nil {
		return nil, fmt.Errorf("update transaction %d to %s: %w", change.ID, change.Status, err)
	}
	u.pending = nil

	if u.refresh != nil {
		if err := u.refresh(ctx); err != nil {
			return tx, err
		}
	}
	return tx, nil
}

func (u *StatusUpdate) Cancel() {
	u.pending = nil
}
