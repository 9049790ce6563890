package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mjsport/photostore/internal/catalog"
	"github.com/mjsport/photostore/internal/domain"
)

// CartService is what the cart endpoints need from the cart layer.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Toggle(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID string, photoID string) error
	Clear(ctx context.Context, sessionID string) error
}

// CartPricer resolves photos and discount tiers for cart responses.
type CartPricer interface {
	ResolveCartItem(ctx context.Context, photoID string) (*domain.CartItem, error)
	ListTiers(ctx context.Context) ([]domain.DiscountTier, error)
}

type CartHandler struct {
	carts   CartService
	catalog CartPricer
	timeout time.Duration
}

func NewCartHandler(carts CartService, catalogSvc CartPricer, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalogSvc,
		timeout: timeout,
	}
}

type ToggleItemRequestDTO struct {
	PhotoID string `json:"photo_id"`
}

type CartResponseDTO struct {
	SessionID string             `json:"session_id"`
	Items     []domain.CartItem  `json:"items"`
	Pricing   domain.CartPricing `json:"pricing"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	cart, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	h.respondCart(ctx, w, cart)
}

func (h *CartHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	var req ToggleItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PhotoID == "" {
		respondError(w, http.StatusBadRequest, "invalid_photo_id", "photo_id must not be empty")
		return
	}

	item, err := h.catalog.ResolveCartItem(ctx, req.PhotoID)
	if err != nil {
		if errors.Is(err, catalog.ErrPhotoNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "photo not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve photo")
		return
	}

	cart, err := h.carts.Toggle(ctx, sessionID, *item)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	h.respondCart(ctx, w, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	photoID := chi.URLParam(r, "photo_id")
	if photoID == "" {
		respondError(w, http.StatusBadRequest, "invalid_photo_id", "photo_id must not be empty")
		return
	}

	if err := h.carts.Remove(ctx, sessionID, photoID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	cart, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	h.respondCart(ctx, w, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	if err := h.carts.Clear(ctx, sessionID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{
		SessionID: sessionID,
		Items:     []domain.CartItem{},
	})
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, cart *domain.Cart) {
	tiers, err := h.catalog.ListTiers(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load discounts")
		return
	}

	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{
		SessionID: cart.SessionID,
		Items:     items,
		Pricing:   domain.PriceCart(cart.Items, tiers),
	})
}
