package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `
	id, order_key, currency, total_minor, subtotal_minor, tax_minor, shipping_minor,
	billing, lines, status, payment_method, paid_at,
	checkout_id, redirect_url, trace_id, link_issued_at, events,
	created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	billing, err := json.Marshal(order.Billing)
	if err != nil {
		return fmt.Errorf("encode billing: %w", err)
	}
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}
	history := order.Meta.Events
	if history == nil {
		history = []domain.WebhookEvent{}
	}
	events, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.OrderKey,
		order.Currency,
		order.TotalMinor,
		order.SubtotalMinor,
		order.TaxMinor,
		order.ShippingMinor,
		billing,
		lines,
		order.Status,
		order.PaymentMethod,
		order.PaidAt,
		order.Meta.CheckoutID,
		order.Meta.RedirectURL,
		order.Meta.TraceID,
		order.Meta.LinkIssuedAt,
		events,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) SetCheckoutSession(ctx context.Context, id string, session ports.CheckoutSession) error {
	query := `
		UPDATE orders
		SET checkout_id = $1, redirect_url = $2, trace_id = $3, link_issued_at = $4, updated_at = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		session.CheckoutID,
		session.RedirectURL,
		session.TraceID,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update checkout session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

// PrependEvent pushes the event onto the front of the jsonb history so the
// newest event is always first. The history is never truncated.
func (r *Repository) PrependEvent(ctx context.Context, id string, event domain.WebhookEvent) error {
	encoded, err := json.Marshal([]domain.WebhookEvent{event})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	query := `
		UPDATE orders
		SET events = $1::jsonb || events, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, encoded, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("prepend event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) AppendNote(ctx context.Context, id string, note string) error {
	query := `
		INSERT INTO order_notes (order_id, note, created_at)
		SELECT id, $2, $3 FROM orders WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert order note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

// Notes returns the audit notes for an order, oldest first.
func (r *Repository) Notes(ctx context.Context, id string) ([]string, error) {
	query := `
		SELECT note
		FROM order_notes
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query order notes: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, fmt.Errorf("scan order note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order notes: %w", err)
	}

	return notes, nil
}

func (r *Repository) MarkPaid(ctx context.Context, id string) error {
	query := `
		UPDATE orders
		SET paid_at = COALESCE(paid_at, $1), updated_at = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order   domain.Order
		billing []byte
		lines   []byte
		events  []byte
	)

	err := row.Scan(
		&order.ID,
		&order.OrderKey,
		&order.Currency,
		&order.TotalMinor,
		&order.SubtotalMinor,
		&order.TaxMinor,
		&order.ShippingMinor,
		&billing,
		&lines,
		&order.Status,
		&order.PaymentMethod,
		&order.PaidAt,
		&order.Meta.CheckoutID,
		&order.Meta.RedirectURL,
		&order.Meta.TraceID,
		&order.Meta.LinkIssuedAt,
		&events,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(billing, &order.Billing); err != nil {
		return nil, fmt.Errorf("decode billing: %w", err)
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &order.Lines); err != nil {
			return nil, fmt.Errorf("decode lines: %w", err)
		}
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &order.Meta.Events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
	}

	return &order, nil
}
