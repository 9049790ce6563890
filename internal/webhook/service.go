package webhook

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/notify"
	"github.com/mjsport/photostore/internal/payment"
	"github.com/mjsport/photostore/internal/repository"
)

// Notification is the provider callback body. Only payment notifications
// carry state; everything else is acknowledged and dropped.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type Service struct {
	orders   repository.OrderRepository
	provider payment.Provider
	mailer   notify.Mailer
}

func NewService(orders repository.OrderRepository, provider payment.Provider, mailer notify.Mailer) *Service {
	return &Service{
		orders:   orders,
		provider: provider,
		mailer:   mailer,
	}
}

// Process reconciles one provider notification. The webhook body is never
// trusted for payment state; the payment is re-fetched from the provider
// and the order updated from that. Safe under redelivery: the download
// email fires only when this call actually flipped the order to paid.
func (s *Service) Process(ctx context.Context, n *Notification) error {
	if n.Type != "payment" {
		return nil
	}

	pmt, err := s.provider.FetchPayment(ctx, n.Data.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch payment %s: %w", n.Data.ID, err)
	}

	orderID, err := uuid.Parse(pmt.ExternalReference)
	if err != nil {
		return fmt.Errorf("%w: bad external reference %q", repository.ErrOrderNotFound, pmt.ExternalReference)
	}

	status, paymentStatus := mapProviderStatus(pmt.Status)

	transitioned, order, err := s.orders.SettlePayment(ctx, orderID, status, paymentStatus, pmt.Detail)
	if err != nil {
		return fmt.Errorf("failed to settle payment for order %s: %w", orderID, err)
	}

	if transitioned {
		if errMail := s.mailer.SendDownloadEmail(ctx, order); errMail != nil {
			log.Printf("failed to send download email for order %s: %v", orderID, errMail)
		}
	}

	return nil
}

// mapProviderStatus translates a provider payment status into order state.
// Unknown statuses keep the order pending and are stored verbatim.
func mapProviderStatus(providerStatus string) (domain.OrderStatus, string) {
	switch providerStatus {
	case payment.StatusApproved:
		return domain.OrderStatusCompleted, domain.PaymentStatusPaid
	case "rejected", "cancelled", "refunded", "charged_back":
		return domain.OrderStatusFailed, providerStatus
	default:
		return domain.OrderStatusPending, providerStatus
	}
}
