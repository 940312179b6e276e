package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"gadgethub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStore struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

func (s *OrderStore) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *o
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
		o.ID = stored.ID
	}
	stored.Products = slices.Clone(o.Products)
	s.orders = append(s.orders, stored)
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (s *OrderStore) FindByUser(_ context.Context, user primitive.ObjectID) ([]models.Order, error) {
	return s.newestFirst(func(o models.Order) bool { return o.User == user }), nil
}

func (s *OrderStore) FindAll(_ context.Context) ([]models.Order, error) {
	return s.newestFirst(func(models.Order) bool { return true }), nil
}

func (s *OrderStore) SetStatus(_ context.Context, id primitive.ObjectID, upd models.StatusUpdate, now time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		o := &s.orders[i]
		if o.ID != id {
			continue
		}
		if upd.OrderStatus != nil {
			o.OrderStatus = *upd.OrderStatus
		}
		if upd.PaymentStatus != nil {
			o.PaymentStatus = *upd.PaymentStatus
		}
		o.UpdatedAt = now
		return cloneOrder(*o), nil
	}
	return nil, nil
}

func (s *OrderStore) Totals(_ context.Context) (int64, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sales float64
	for _, o := range s.orders {
		if o.PaymentStatus == models.PaymentPaid {
			sales += o.TotalAmount
		}
	}
	return int64(len(s.orders)), sales, nil
}

func (s *OrderStore) newestFirst(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// walk backwards so orders with equal timestamps come out newest first
	out := []models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if keep(s.orders[i]) {
			out = append(out, *cloneOrder(s.orders[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func cloneOrder(o models.Order) *models.Order {
	o.Products = slices.Clone(o.Products)
	return &o
}
