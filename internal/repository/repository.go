package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/mjsport/photostore/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
	ErrEventNotFound  = errors.New("event not found")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetPaymentSession(ctx context.Context, id uuid.UUID, providerRef string) error
	MarkOrderFailed(ctx context.Context, id uuid.UUID, paymentStatus string) error
	SettlePayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus string, detail json.RawMessage) (bool, *domain.Order, error)
}

type CatalogRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEventByID(ctx context.Context, id string) (*domain.Event, error)
	ListPhotosByEvent(ctx context.Context, eventID string) ([]domain.Photo, error)
	GetPhotosByIDs(ctx context.Context, ids []string) ([]domain.Photo, error)
	ListDiscountTiers(ctx context.Context) ([]domain.DiscountTier, error)
}
