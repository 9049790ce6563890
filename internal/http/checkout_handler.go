package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mjsport/photostore/internal/checkout"
	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/repository"
)

// CheckoutService submits orders and serves the status pages.
type CheckoutService interface {
	Submit(ctx context.Context, req *checkout.SubmitRequest) (*checkout.SubmitResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkoutSvc CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutSvc,
		timeout:  timeout,
	}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.SessionID = getSessionID(r.Context())

	resp, err := h.checkout.Submit(ctx, &req)
	if err != nil {
		var vErr *checkout.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   vErr.Error(),
				Code:    "validation_failed",
				Details: vErr.Field,
			})
		case errors.Is(err, checkout.ErrUpstream):
			respondError(w, http.StatusBadGateway, "upstream_error", "failed to process order")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to process order")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// OrderResponseDTO is the public order view polled by the post-payment
// landing pages. Contact details stay private.
type OrderResponseDTO struct {
	OrderID        string             `json:"order_id"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"payment_status"`
	Items          []domain.OrderItem `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	DiscountAmount float64            `json:"discount_amount"`
	TotalAmount    float64            `json:"total_amount"`
	CreatedAt      time.Time          `json:"created_at"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a uuid")
		return
	}

	order, err := h.checkout.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{
		OrderID:        order.ID.String(),
		Status:         order.Status.String(),
		PaymentStatus:  order.PaymentStatus,
		Items:          order.Items,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		CreatedAt:      order.CreatedAt,
		PaidAt:         order.PaidAt,
	})
}
