package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mjsport/photostore/internal/catalog"
	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/payment"
	"github.com/mjsport/photostore/internal/repository"
)

// CatalogResolver re-reads photos and discount tiers so pricing never
// depends on client input.
type CatalogResolver interface {
	ResolveItems(ctx context.Context, photoIDs []string) ([]domain.OrderItem, error)
	ListTiers(ctx context.Context) ([]domain.DiscountTier, error)
}

// CartClearer empties the shopper's session cart after a successful submit.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type Service struct {
	catalog  CatalogResolver
	orders   repository.OrderRepository
	provider payment.Provider
	carts    CartClearer
}

func NewService(catalogSvc CatalogResolver, orders repository.OrderRepository, provider payment.Provider, carts CartClearer) *Service {
	return &Service{
		catalog:  catalogSvc,
		orders:   orders,
		provider: provider,
		carts:    carts,
	}
}

// SubmitResponse is returned to the storefront; RedirectURL points at the
// provider's hosted checkout.
type SubmitResponse struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

// Submit validates the request, prices the selection from the catalog,
// persists a pending order and opens a payment session. The order is
// written before the provider call; if the session cannot be created the
// order is marked failed rather than left dangling.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items, err := s.catalog.ResolveItems(ctx, req.photoIDs())
	if err != nil {
		if errors.Is(err, catalog.ErrPhotoNotFound) {
			return nil, &ValidationError{Field: "items", Reason: "contains an unknown photo"}
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	tiers, err := s.catalog.ListTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	cartItems := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		cartItems = append(cartItems, domain.CartItem{PhotoID: item.PhotoID, UnitPrice: item.Price})
	}
	pricing := domain.PriceCart(cartItems, tiers)

	now := time.Now()
	order := &domain.Order{
		ID:             uuid.New(),
		CustomerName:   req.Name,
		CustomerEmail:  req.Email,
		CustomerPhone:  req.Phone,
		Note:           req.Message,
		Items:          items,
		Subtotal:       pricing.Subtotal,
		DiscountAmount: pricing.DiscountAmount,
		TotalAmount:    pricing.Total,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		Provider:       s.provider.Name(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	session, err := s.provider.CreateSession(ctx, sessionRequest(order))
	if err != nil {
		if errMark := s.orders.MarkOrderFailed(ctx, order.ID, "session_failed"); errMark != nil {
			log.Printf("failed to mark order %s failed: %v", order.ID, errMark)
		}
		return nil, fmt.Errorf("%w: payment session: %v", ErrUpstream, err)
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		log.Printf("failed to store payment session for order %s: %v", order.ID, err)
	}

	if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		log.Printf("failed to clear cart %s: %v", req.SessionID, err)
	}

	return &SubmitResponse{
		Success:    true,
		OrderID:    order.ID.String(),
		PaymentURL: session.RedirectURL,
	}, nil
}

// GetOrder exposes the persisted order for the post-redirect status pages.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOrderByID(ctx, orderID)
}

func sessionRequest(order *domain.Order) *payment.SessionRequest {
	items := make([]payment.SessionItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, payment.SessionItem{
			PhotoID:   item.PhotoID,
			Title:     item.PhotoName,
			UnitPrice: item.Price,
		})
	}
	return &payment.SessionRequest{
		OrderID:       order.ID.String(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Items:         items,
		Total:         order.TotalAmount,
	}
}
