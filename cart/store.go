package cart

import (
	"context"
	"fmt"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrQuantityLimit is returned by AddItem when the line would go past
// utils.MaxQuantity.
var ErrQuantityLimit = utils.Validation(fmt.Sprintf("quantity must be at most %d", utils.MaxQuantity))

// Store persists one cart document per user. Lookups that match nothing
// return (nil, nil).
type Store interface {
	FindByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error)
	// AddItem increments the product's line or appends a new one, creating
	// the cart when the user has none. It must be atomic per call and never
	// push a line past utils.MaxQuantity.
	AddItem(ctx context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error)
	// SetQuantity replaces the quantity of an existing line.
	SetQuantity(ctx context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error)
	// RemoveItem pulls an existing line. The cart itself is kept.
	RemoveItem(ctx context.Context, user, product primitive.ObjectID, now time.Time) (*models.Cart, error)
	DeleteByUser(ctx context.Context, user primitive.ObjectID) error
	// TakeByUser deletes a cart that has at least one line and returns it.
	// Of two concurrent calls only one gets the cart.
	TakeByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error)
}
