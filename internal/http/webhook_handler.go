package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mjsport/photostore/internal/webhook"
)

// WebhookProcessor reconciles provider payment notifications.
type WebhookProcessor interface {
	Process(ctx context.Context, n *webhook.Notification) error
}

type WebhookHandler struct {
	processor    WebhookProcessor
	providerName string
	timeout      time.Duration
}

func NewWebhookHandler(processor WebhookProcessor, providerName string, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		processor:    processor,
		providerName: providerName,
		timeout:      timeout,
	}
}

// Handle acknowledges notifications with 200 so the provider stops
// redelivering; processing failures return 500 and the provider retries.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if chi.URLParam(r, "provider") != h.providerName {
		respondError(w, http.StatusNotFound, "not_found", "unknown payment provider")
		return
	}

	var n webhook.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.processor.Process(ctx, &n); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to process notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
