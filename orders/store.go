package orders

import (
	"context"
	"time"

	"gadgethub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store persists orders. Only the status fields of a stored order change.
type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	// FindByID returns (nil, nil) when there is no such order.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// FindByUser and FindAll return newest first.
	FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	// SetStatus applies the non-nil fields of upd and returns the updated
	// order, or (nil, nil) when there is no such order.
	SetStatus(ctx context.Context, id primitive.ObjectID, upd models.StatusUpdate, now time.Time) (*models.Order, error)
	// Totals counts all orders and sums totalAmount over paid ones.
	Totals(ctx context.Context) (count int64, sales float64, err error)
}
