package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

const transactionColumns = `id, tracking_number, name, email, location, phone, products,
	total_amount, status, payment_proof, payment_proof_key, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		tx    domain.Transaction
		proof sql.NullString
		key   sql.NullString
	)
	err := row.Scan(&tx.ID, &tx.TrackingNumber, &tx.Name, &tx.Email, &tx.Location, &tx.Phone,
		&tx.Products, &tx.TotalAmount, &tx.Status, &proof, &key, &tx.CreatedAt)
	if err != nil {
		return tx, err
	}
	if proof.Valid && proof.String != "" {
		tx.PaymentProof = &proof.String
	}
	tx.PaymentProofKey = key.String
	return tx, nil
}

func (s *SQLAdapter) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	id, err := s.insert(ctx, s.db, `
		INSERT INTO transactions (tracking_number, name, email, location, phone, products,
			total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.TrackingNumber, tx.Name, tx.Email, tx.Location, tx.Phone, tx.Products,
		tx.TotalAmount, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = id
	return nil
}

func (s *SQLAdapter) getTransaction(ctx context.Context, where string, arg any) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+transactionColumns+` FROM transactions WHERE `+where), arg)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return &tx, nil
}

func (s *SQLAdapter) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.getTransaction(ctx, "id = ?", id)
}

func (s *SQLAdapter) GetTransactionByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	return s.getTransaction(ctx, "tracking_number = ?", trackingNumber)
}

func (s *SQLAdapter) ListTransactions(ctx context.Context, filter port.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		pattern := "%" + escapeLike(search) + "%"
		conds = append(conds, `(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(tracking_number) = ?)`)
		args = append(args, pattern, pattern, search)
	}
	if filter.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, filter.Status)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *SQLAdapter) UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`UPDATE transactions SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	return nil
}

func (s *SQLAdapter) AttachPaymentProof(ctx context.Context, id int64, url, key string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE transactions SET payment_proof = ?, payment_proof_key = ?, status = ?
		WHERE id = ?`),
		url, key, domain.OrderStatusPaymentUploaded, id,
	)
	if err != nil {
		return fmt.Errorf("attach payment proof: %w", err)
	}
	return nil
}
