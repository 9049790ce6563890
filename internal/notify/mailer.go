package notify

import (
	"context"

	"github.com/mjsport/photostore/internal/domain"
)

// Mailer sends the post-payment download email. Callers treat failures as
// non-fatal; the order itself is already settled.
type Mailer interface {
	SendDownloadEmail(ctx context.Context, order *domain.Order) error
}
