package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

func (s OrderStatus) String() string {
	return string(s)
}

// Payment statuses are provider-defined and stored verbatim, except for
// the two states the storefront assigns itself.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// CanTransitionTo guards the order lifecycle: a pending order may stay
// pending or settle into a terminal state; terminal states never move again.
func CanTransitionTo(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed:
		return true
	default:
		return false
	}
}

// OrderItem is a snapshot of a purchased photo with its authoritative
// price and resolved download URL, taken at submission time.
type OrderItem struct {
	PhotoID     string  `json:"photo_id"`
	EventName   string  `json:"event_name"`
	PhotoName   string  `json:"photo_name"`
	Price       float64 `json:"price"`
	DownloadURL string  `json:"download_url"`
}

type Order struct {
	ID             uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Note           string
	Items          []OrderItem
	Subtotal       float64
	DiscountAmount float64
	TotalAmount    float64
	Status         OrderStatus
	PaymentStatus  string
	Provider       string
	ProviderRef    string
	PaymentDetail  json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
}
