package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

const (
	idempotencyKeyPrefix = "checkout:"
	paymentProofFolder   = "payment_proofs"
)

var paymentProofExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

type PlaceOrderInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Location       string `json:"location"`
	Phone          string `json:"phone"`
	Products       string `json:"products"`
	TotalAmount    string `json:"total_amount"`
	IdempotencyKey string `json:"-"`
}

func (in PlaceOrderInput) validate() (domain.Money, error) {
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"location", in.Location},
		{"phone", in.Phone},
		{"products", in.Products},
		{"total_amount", in.TotalAmount},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Money{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, r.field)
		}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.Money{}, fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
	}
	total, err := domain.ParseMoney(strings.TrimSpace(in.TotalAmount))
	if err != nil || total.IsNegative() {
		return domain.Money{}, fmt.Errorf("%w: total_amount must be a non-negative decimal", ErrInvalidInput)
	}
	if err := total.CheckRange(); err != nil {
		return domain.Money{}, fmt.Errorf("%w: total_amount: %v", ErrInvalidInput, err)
	}
	return total, nil
}

// OrderService records orders and their lifecycle. Every change is
// published on the event queue, which the caller drains with workers.
type OrderService struct {
	repo   port.TransactionRepository
	cache  port.CacheRepository
	files  port.FileStore
	events chan domain.OrderEvent

	mu     sync.RWMutex
	closed bool
}

func NewOrderService(repo port.TransactionRepository, cache port.CacheRepository, files port.FileStore, queueSize int) *OrderService {
	return &OrderService{
		repo:   repo,
		cache:  cache,
		files:  files,
		events: make(chan domain.OrderEvent, queueSize),
	}
}

func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Transaction, error) {
	total, err := in.validate()
	if err != nil {
		return nil, err
	}

	var idempotencyKey string
	if in.IdempotencyKey != "" {
		idempotencyKey = idempotencyKeyPrefix + in.IdempotencyKey
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	tx := domain.Transaction{
		TrackingNumber: uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Location:       strings.TrimSpace(in.Location),
		Phone:          strings.TrimSpace(in.Phone),
		Products:       in.Products,
		TotalAmount:    total,
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateTransaction(ctx, &tx); err != nil {
		if idempotencyKey != "" {
			if relErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); relErr != nil {
				log.Printf("release idempotency key %s: %v", idempotencyKey, relErr)
			}
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(domain.OrderEvent{Kind: domain.OrderEventCreated, Transaction: tx, At: tx.CreatedAt})
	return &tx, nil
}

func (s *OrderService) lookup(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	if _, err := uuid.Parse(strings.TrimSpace(trackingNumber)); err != nil {
		return nil, ErrInvalidTrackingNumber
	}
	tx, err := s.repo.GetTransactionByTrackingNumber(ctx, strings.TrimSpace(trackingNumber))
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if tx == nil {
		return nil, ErrInvalidTrackingNumber
	}
	return tx, nil
}

// TrackOrder looks an order up by its tracking number.
func (s *OrderService) TrackOrder(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	return s.lookup(ctx, trackingNumber)
}

// UploadPaymentProof stores the customer's proof of payment and moves the
// order to payment_uploaded. A previously uploaded proof is replaced.
func (s *OrderService) UploadPaymentProof(ctx context.Context, trackingNumber, filename string, content io.Reader) (*domain.Transaction, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !paymentProofExtensions[ext] {
		return nil, fmt.Errorf("%w: payment proof must be jpg, jpeg, png or pdf", ErrInvalidInput)
	}

	tx, err := s.lookup(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, paymentProofFolder, uuid.NewString()+ext, content)
	if err != nil {
		return nil, fmt.Errorf("store payment proof: %w", err)
	}

	if err := s.repo.AttachPaymentProof(ctx, tx.ID, stored.URL, stored.Key); err != nil {
		if delErr := s.files.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("delete orphaned proof %s: %v", stored.Key, delErr)
		}
		return nil, fmt.Errorf("attach payment proof: %w", err)
	}

	if tx.PaymentProofKey != "" {
		if err := s.files.Delete(ctx, tx.PaymentProofKey); err != nil {
			log.Printf("delete replaced proof %s: %v", tx.PaymentProofKey, err)
		}
	}

	previous := tx.Status
	tx.PaymentProof = &stored.URL
	tx.PaymentProofKey = stored.Key
	tx.Status = domain.OrderStatusPaymentUploaded

	s.publish(domain.OrderEvent{
		Kind:           domain.OrderEventProofUploaded,
		Transaction:    *tx,
		PreviousStatus: previous,
		At:             time.Now().UTC(),
	})
	return tx, nil
}

func (s *OrderService) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	return tx, nil
}

// ListTransactions filters by search term and status; "" and "all" accept
// every status.
func (s *OrderService) ListTransactions(ctx context.Context, search, status string) ([]domain.Transaction, error) {
	filter := port.TransactionFilter{Search: strings.TrimSpace(search)}
	if status != "" && status != catalog.StatusAll {
		st, err := domain.ParseOrderStatus(status)
		if err != nil {
			return nil, errors.Join(ErrInvalidInput, err)
		}
		filter.Status = st
	}

	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// UpdateStatus is the admin action that moves an order through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Transaction, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Status == st {
		return tx, nil
	}

	if err := s.repo.UpdateTransactionStatus(ctx, id, st); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	previous := tx.Status
	tx.Status = st
	s.publish(domain.OrderEvent{
		Kind:           domain.OrderEventStatusChanged,
		Transaction:    *tx,
		PreviousStatus: previous,
		At:             time.Now().UTC(),
	})
	return tx, nil
}

func (s *OrderService) publish(event domain.OrderEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.events <- event:
	default:
		log.Printf("event queue full, dropping %s event for order %s", event.Kind, event.Transaction.TrackingNumber)
	}
}

func (s *OrderService) GetEventQueue() <-chan domain.OrderEvent {
	return s.events
}

func (s *OrderService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
