package cart

import (
	"context"
	"log"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	Active(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

// ItemRequest is the body of add and update.
type ItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,max=10000"`
}

type RemoveRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type Service struct {
	store    Store
	products ProductLookup
	now      func() time.Time
}

func NewService(store Store, products ProductLookup) *Service {
	return &Service{store: store, products: products, now: time.Now}
}

func (s *Service) Add(ctx context.Context, user primitive.ObjectID, req ItemRequest) (*models.CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	pid, err := utils.ParseObjectID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.Active(ctx, pid); err != nil {
		return nil, err
	}

	c, err := s.store.AddItem(ctx, user, pid, req.Quantity, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, c)
}

// Get returns the resolved cart. A user without a cart gets an empty view.
func (s *Service) Get(ctx context.Context, user primitive.ObjectID) (*models.CartView, error) {
	c, err := s.store.FindByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &models.CartView{User: user, Items: []models.CartLine{}}, nil
	}
	return s.resolve(ctx, c)
}

// Items returns the raw line items, or nil when there is no cart.
func (s *Service) Items(ctx context.Context, user primitive.ObjectID) ([]models.CartItem, error) {
	c, err := s.store.FindByUser(ctx, user)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Items, nil
}

func (s *Service) Update(ctx context.Context, user primitive.ObjectID, req ItemRequest) (*models.CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	pid, err := s.existingLine(ctx, user, req.ProductID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.SetQuantity(ctx, user, pid, req.Quantity, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, utils.NotFound("Product not found in cart")
	}
	return s.resolve(ctx, c)
}

func (s *Service) Remove(ctx context.Context, user primitive.ObjectID, req RemoveRequest) (*models.CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	pid, err := s.existingLine(ctx, user, req.ProductID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.RemoveItem(ctx, user, pid, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, utils.NotFound("Product not found in cart")
	}
	return s.resolve(ctx, c)
}

// Take removes the user's cart for checkout and returns its lines. Nil
// means there was nothing to take.
func (s *Service) Take(ctx context.Context, user primitive.ObjectID) ([]models.CartItem, error) {
	c, err := s.store.TakeByUser(ctx, user)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Items, nil
}

// Restore puts lines back after a checkout that took the cart but failed.
// Lines are merged into whatever the user has added since.
func (s *Service) Restore(ctx context.Context, user primitive.ObjectID, items []models.CartItem) error {
	now := s.now().UTC()
	for _, it := range items {
		if _, err := s.store.AddItem(ctx, user, it.Product, it.Quantity, now); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes the user's cart. Clearing a missing cart is not an error.
func (s *Service) Clear(ctx context.Context, user primitive.ObjectID) error {
	return s.store.DeleteByUser(ctx, user)
}

func (s *Service) existingLine(ctx context.Context, user primitive.ObjectID, productID string) (primitive.ObjectID, error) {
	pid, err := utils.ParseObjectID(productID, "product")
	if err != nil {
		return pid, err
	}
	c, err := s.store.FindByUser(ctx, user)
	if err != nil {
		return pid, err
	}
	if c == nil {
		return pid, utils.NotFound("Cart not found")
	}
	for _, it := range c.Items {
		if it.Product == pid {
			return pid, nil
		}
	}
	return pid, utils.NotFound("Product not found in cart")
}

// resolve populates product references. Lines whose product no longer
// exists at all are dropped from the view.
func (s *Service) resolve(ctx context.Context, c *models.Cart) (*models.CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.Product)
	}
	found, err := s.products.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{
		ID:        c.ID,
		User:      c.User,
		Items:     make([]models.CartLine, 0, len(c.Items)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, it := range c.Items {
		p, ok := found[it.Product]
		if !ok {
			log.Printf("cart %s references missing product %s", c.ID.Hex(), it.Product.Hex())
			continue
		}
		view.Items = append(view.Items, models.CartLine{Product: p, Quantity: it.Quantity})
	}
	return view, nil
}
