package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusPaymentUploaded  OrderStatus = "payment_uploaded"
	OrderStatusPaymentConfirmed OrderStatus = "payment_confirmed"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaymentUploaded,
	OrderStatusPaymentConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// Label renders the status for people: "payment_uploaded" -> "Payment Uploaded".
func (s OrderStatus) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Transaction is a placed order. Products is the human-readable summary
// captured at checkout, not a structured line list.
type Transaction struct {
	ID              int64       `json:"id"`
	TrackingNumber  string      `json:"tracking_number"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Location        string      `json:"location"`
	Phone           string      `json:"phone"`
	Products        string      `json:"products"`
	TotalAmount     Money       `json:"total_amount"`
	Status          OrderStatus `json:"status"`
	PaymentProof    *string     `json:"payment_proof"`
	PaymentProofKey string      `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
}

type OrderEventKind string

const (
	OrderEventCreated       OrderEventKind = "created"
	OrderEventStatusChanged OrderEventKind = "status_changed"
	OrderEventProofUploaded OrderEventKind = "proof_uploaded"
)

type OrderEvent struct {
	Kind           OrderEventKind `json:"kind"`
	Transaction    Transaction    `json:"transaction"`
	PreviousStatus OrderStatus    `json:"previous_status,omitempty"`
	At             time.Time      `json:"at"`
}
