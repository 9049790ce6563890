package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/repository"
)

// CatalogReader serves the public gallery endpoints.
type CatalogReader interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListEventPhotos(ctx context.Context, eventID string) ([]domain.Photo, error)
	ListTiers(ctx context.Context) ([]domain.DiscountTier, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	timeout time.Duration
}

func NewCatalogHandler(catalogSvc CatalogReader, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogSvc,
		timeout: timeout,
	}
}

func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	events, err := h.catalog.ListEvents(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load events")
		return
	}
	if events == nil {
		events = []domain.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}

func (h *CatalogHandler) ListEventPhotos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	eventID := chi.URLParam(r, "event_id")
	photos, err := h.catalog.ListEventPhotos(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "event not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load photos")
		return
	}
	if photos == nil {
		photos = []domain.Photo{}
	}

	respondJSON(w, http.StatusOK, photos)
}

func (h *CatalogHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tiers, err := h.catalog.ListTiers(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load discounts")
		return
	}
	if tiers == nil {
		tiers = []domain.DiscountTier{}
	}

	respondJSON(w, http.StatusOK, tiers)
}
