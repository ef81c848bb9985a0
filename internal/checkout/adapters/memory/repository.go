package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	notes  map[string][]string
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders: make(map[string]domain.Order),
		notes:  make(map[string][]string),
	}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// UpdateStatus sets the status and updatedAt timestamp for an order.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// SetCheckoutSession records the hosted-page identifiers from the latest attempt.
func (r *Repository) SetCheckoutSession(_ context.Context, id string, session ports.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	now := time.Now().UTC()
	order.Meta.CheckoutID = session.CheckoutID
	order.Meta.RedirectURL = session.RedirectURL
	order.Meta.TraceID = session.TraceID
	order.Meta.LinkIssuedAt = &now
	order.UpdatedAt = now
	r.orders[id] = order
	return nil
}

// PrependEvent adds an event to the front of the order's history.
func (r *Repository) PrependEvent(_ context.Context, id string, event domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	events := make([]domain.WebhookEvent, 0, len(order.Meta.Events)+1)
	events = append(events, event)
	events = append(events, order.Meta.Events...)
	order.Meta.Events = events
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// AppendNote records an audit note for the order.
func (r *Repository) AppendNote(_ context.Context, id string, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	r.notes[id] = append(r.notes[id], note)
	return nil
}

// Notes returns the recorded notes for an order, oldest first. Test helper.
func (r *Repository) Notes(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notes := make([]string, len(r.notes[id]))
	copy(notes, r.notes[id])
	return notes
}

// MarkPaid records the payment-complete side effect.
func (r *Repository) MarkPaid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.PaidAt != nil {
		// First capture wins, matching the postgres adapter.
		return nil
	}

	now := time.Now().UTC()
	order.PaidAt = &now
	order.UpdatedAt = now
	r.orders[id] = order
	return nil
}
