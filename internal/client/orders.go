package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rl1809/micro-shop/internal/core/cart"
	"github.com/rl1809/micro-shop/internal/core/domain"
)

// PlaceOrder submits a checkout and returns the issued tracking number. It
// satisfies cart.OrderPlacer.
func (c *Client) PlaceOrder(ctx context.Context, order cart.OrderRequest) (string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/transactions/", order)
	if err != nil {
		return "", err
	}
	if order.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", order.IdempotencyKey)
	}

	var tx domain.Transaction
	if err := c.do(req, &tx); err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	return tx.TrackingNumber, nil
}

// TrackOrder looks up one order by its tracking number.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	var tx domain.Transaction
	q := url.Values{"tracking_number": {trackingNumber}}
	if err := c.get(ctx, "/track-order/", q, &tx); err != nil {
		return nil, fmt.Errorf("track order: %w", err)
	}
	return &tx, nil
}

// UploadPaymentProof attaches a receipt to the order; the backend moves it
// to payment_uploaded.
func (c *Client) UploadPaymentProof(ctx context.Context, trackingNumber string, proof File) error {
	form := newFormBody()
	form.field("tracking_number", trackingNumber)
	form.file("payment_proof", proof)
	if err := c.sendForm(ctx, http.MethodPost, "/upload-payment-proof/", form, nil); err != nil {
		return fmt.Errorf("upload payment proof: %w", err)
	}
	return nil
}

// ListTransactions returns every order matching search and status. Empty
// values or status "all" leave that filter off.
func (c *Client) ListTransactions(ctx context.Context, search, status string) ([]domain.Transaction, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if status != "" && status != "all" {
		q.Set("status", status)
	}

	var txs []domain.Transaction
	if err := c.get(ctx, "/transactions/", q, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.get(ctx, transactionPath(id), nil, &tx); err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &tx, nil
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Transaction, error) {
	var tx domain.Transaction
	body := map[string]string{"status": string(status)}
	if err := c.sendJSON(ctx, http.MethodPatch, transactionPath(id), body, &tx); err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return &tx, nil
}

func (c *Client) ExportTransactions(ctx context.Context, w io.Writer) error {
	return c.download(ctx, "/transactions/export/", w)
}

func transactionPath(id int64) string {
	return "/transactions/" + strconv.FormatInt(id, 10) + "/"
}
