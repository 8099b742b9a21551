package cart

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNotCheckingOut  = errors.New("checkout has not been started")
	ErrInvalidCustomer = errors.New("invalid customer info")
)

type State int

const (
	StateEmpty State = iota
	StateNonEmpty
	StateCheckoutInProgress
	StateOrderConfirmed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateNonEmpty:
		return "non-empty"
	case StateCheckoutInProgress:
		return "checkout-in-progress"
	case StateOrderConfirmed:
		return "order-confirmed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CustomerInfo is the shipping form filled in at checkout.
type CustomerInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

func (c CustomerInfo) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"location", c.Location},
		{"phone", c.Phone},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCustomer, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidCustomer, err)
	}
	return nil
}

// OrderRequest is what a checkout submission sends to the backend.
type OrderRequest struct {
	CustomerInfo
	Products       string `json:"products"`
	TotalAmount    string `json:"total_amount"`
	IdempotencyKey string `json:"-"`
}

// OrderPlacer creates the order record and returns its tracking number.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (trackingNumber string, err error)
}

// Session drives a cart through checkout. Like Cart it has a single owner.
type Session struct {
	cart           *Cart
	checkingOut    bool
	confirmed      bool
	attemptKey     string
	trackingNumber string
}

func NewSession(c *Cart) *Session {
	if c == nil {
		c = New()
	}
	return &Session{cart: c}
}

func (s *Session) Cart() *Cart {
	return s.cart
}

func (s *Session) State() State {
	switch {
	case s.confirmed:
		return StateOrderConfirmed
	case s.checkingOut:
		return StateCheckoutInProgress
	case s.cart.IsEmpty():
		return StateEmpty
	}
	return StateNonEmpty
}

func (s *Session) IsOrderConfirmed() bool {
	return s.confirmed
}

// TrackingNumber is the number issued by the last successful submission.
func (s *Session) TrackingNumber() string {
	return s.trackingNumber
}

func (s *Session) Add(item Item, qty int) {
	s.confirmed = false
	s.cart.Add(item, qty)
}

func (s *Session) Remove(productID int64) {
	s.confirmed = false
	s.cart.Remove(productID)
	if s.cart.IsEmpty() {
		s.checkingOut = false
	}
}

func (s *Session) UpdateQuantity(productID int64, qty int) {
	s.confirmed = false
	s.cart.UpdateQuantity(productID, qty)
}

func (s *Session) BeginCheckout() error {
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	s.confirmed = false
	s.checkingOut = true
	s.attemptKey = uuid.NewString()
	return nil
}

// CancelCheckout closes the checkout form and keeps the cart.
func (s *Session) CancelCheckout() {
	s.checkingOut = false
}

// Submit sends the cart snapshot and the customer form as one order. On
// failure nothing changes and the caller decides whether to try again.
func (s *Session) Submit(ctx context.Context, placer OrderPlacer, info CustomerInfo) (string, error) {
	if !s.checkingOut {
		return "", ErrNotCheckingOut
	}
	if err := info.Validate(); err != nil {
		return "", err
	}

	req := OrderRequest{
		CustomerInfo:   info,
		Products:       s.cart.Summary(),
		TotalAmount:    s.cart.Total(),
		IdempotencyKey: s.attemptKey,
	}
	tracking, err := placer.PlaceOrder(ctx, req)
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}

	s.trackingNumber = tracking
	s.cart.Clear()
	s.checkingOut = false
	s.confirmed = true
	return tracking, nil
}

// Acknowledge dismisses the confirmation.
func (s *Session) Acknowledge() {
	s.confirmed = false
}
