package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mjsport/photostore/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	log.Println("connected to postgres")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "photostore_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (order_id, customer_name, customer_email, customer_phone, note,
	                              items, subtotal, discount_amount, total_amount,
	                              status, payment_status, provider, provider_ref, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.Note,
		string(itemsJSON), // lib/pq would send []byte as bytea, not jsonb
		order.Subtotal,
		order.DiscountAmount,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.Provider,
		order.ProviderRef)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

const orderColumns = `order_id, customer_name, customer_email, customer_phone, note,
	items, subtotal, discount_amount, total_amount,
	status, payment_status, provider, provider_ref, payment_detail,
	created_at, updated_at, paid_at`

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) SetPaymentSession(ctx context.Context, id uuid.UUID, providerRef string) error {
	query := `UPDATE orders SET provider_ref = $2, updated_at = NOW() WHERE order_id = $1`

	result, err := r.db.ExecContext(ctx, query, id, providerRef)
	if err != nil {
		return fmt.Errorf("set payment session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) MarkOrderFailed(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	query := `UPDATE orders SET status = $2, payment_status = $3, updated_at = NOW()
	          WHERE order_id = $1 AND payment_status <> $4`

	result, err := r.db.ExecContext(ctx, query, id, domain.OrderStatusFailed, paymentStatus, domain.PaymentStatusPaid)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SettlePayment applies a provider payment outcome inside a row-locked
// transaction. A paid order is never re-settled and a terminal order is
// never resurrected (domain.CanTransitionTo is the gate), so redelivered
// or late webhooks cannot re-trigger paid side effects. The returned bool
// is true only when this call moved the order into the paid state.
func (r *Repository) SettlePayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus string, detail json.RawMessage) (bool, *domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("begin settle transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE`
	current, err := scanOrder(tx.QueryRowContext(ctx, lockQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil, ErrOrderNotFound
	}
	if err != nil {
		return false, nil, fmt.Errorf("lock order for settle: %w", err)
	}

	if current.PaymentStatus == domain.PaymentStatusPaid || !domain.CanTransitionTo(current.Status, status) {
		return false, current, nil
	}

	query := `UPDATE orders
	          SET status = $2,
	              payment_status = $3,
	              payment_detail = $4,
	              paid_at = CASE WHEN $3 = $5 THEN NOW() ELSE paid_at END,
	              updated_at = NOW()
	          WHERE order_id = $1
	          RETURNING ` + orderColumns

	var detailArg sql.NullString
	if len(detail) > 0 {
		detailArg = sql.NullString{String: string(detail), Valid: true}
	}

	order, err := scanOrder(tx.QueryRowContext(ctx, query, id, status, paymentStatus, detailArg, domain.PaymentStatusPaid))
	if err != nil {
		return false, nil, fmt.Errorf("settle payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("commit settle transaction: %w", err)
	}
	return paymentStatus == domain.PaymentStatusPaid, order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	var detail []byte
	var note sql.NullString
	var providerRef sql.NullString
	var paidAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&note,
		&itemsJSON,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
		&order.Provider,
		&providerRef,
		&detail,
		&order.CreatedAt,
		&order.UpdatedAt,
		&paidAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	order.Note = note.String
	order.ProviderRef = providerRef.String
	order.PaymentDetail = detail
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	return &order, nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT e.id, e.name, e.date, COALESCE(e.description, ''),
	                 COALESCE(e.cover_url, ''), COALESCE(e.watermark_url, ''),
	                 COUNT(p.id)
	          FROM events e
	          LEFT JOIN photos p ON p.event_id = e.id
	          WHERE e.date <= NOW()
	          GROUP BY e.id
	          ORDER BY e.date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Description, &e.CoverURL, &e.WatermarkURL, &e.PhotoCount); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT e.id, e.name, e.date, COALESCE(e.description, ''),
	                 COALESCE(e.cover_url, ''), COALESCE(e.watermark_url, ''),
	                 COUNT(p.id)
	          FROM events e
	          LEFT JOIN photos p ON p.event_id = e.id
	          WHERE e.id = $1
	          GROUP BY e.id`

	var e domain.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Date, &e.Description, &e.CoverURL, &e.WatermarkURL, &e.PhotoCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event by id: %w", err)
	}
	return &e, nil
}

func (r *Repository) ListPhotosByEvent(ctx context.Context, eventID string) ([]domain.Photo, error) {
	query := `SELECT id, event_id, name, price, url, COALESCE(original_path, ''), created_at
	          FROM photos WHERE event_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("query photos by event: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

func (r *Repository) GetPhotosByIDs(ctx context.Context, ids []string) ([]domain.Photo, error) {
	query := `SELECT id, event_id, name, price, url, COALESCE(original_path, ''), created_at
	          FROM photos WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query photos by ids: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

func scanPhotos(rows *sql.Rows) ([]domain.Photo, error) {
	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Price, &p.URL, &p.OriginalPath, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo row: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return photos, nil
}

func (r *Repository) ListDiscountTiers(ctx context.Context) ([]domain.DiscountTier, error) {
	query := `SELECT id, min_quantity, percentage FROM discount_tiers ORDER BY min_quantity`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query discount tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.DiscountTier
	for rows.Next() {
		var t domain.DiscountTier
		if err := rows.Scan(&t.ID, &t.MinQuantity, &t.Percentage); err != nil {
			return nil, fmt.Errorf("scan discount tier row: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tiers, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
