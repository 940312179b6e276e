package orders

import (
	"context"
	"log"
	"strings"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartSource is what checkout needs from the cart. Take must hand a given
// cart to at most one caller.
type CartSource interface {
	Take(ctx context.Context, user primitive.ObjectID) ([]models.CartItem, error)
	Restore(ctx context.Context, user primitive.ObjectID, items []models.CartItem) error
}

type ProductResolver interface {
	Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

// Transactor runs fn so that its writes commit or fail together where the
// backing store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, ev models.OrderEvent) error
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type Service struct {
	store    Store
	carts    CartSource
	products ProductResolver
	tx       Transactor
	pub      Publisher
	now      func() time.Time
}

// NewService wires the order service. tx and pub may be nil: writes then run
// without a transaction and no events are published.
func NewService(store Store, carts CartSource, products ProductResolver, tx Transactor, pub Publisher) *Service {
	return &Service{store: store, carts: carts, products: products, tx: tx, pub: pub, now: time.Now}
}

// PlaceOrder turns the user's cart into an order, locking each line at the
// product's current price, and deletes the cart.
func (s *Service) PlaceOrder(ctx context.Context, user primitive.ObjectID, req PlaceOrderRequest) (*models.Order, error) {
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, utils.Validation("Shipping address is required")
	}

	var order *models.Order
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		items, err := s.carts.Take(ctx, user)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return utils.Validation("Cart is empty")
		}

		order, err = s.buildOrder(ctx, user, address, items)
		if err == nil {
			err = s.store.Insert(ctx, order)
		}
		if err != nil {
			// Without a real transaction the cart is already gone.
			if rerr := s.carts.Restore(ctx, user, items); rerr != nil {
				log.Printf("restore cart for user %s: %v", user.Hex(), rerr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.NewOrderEvent(models.EventOrderCreated, order))
	return order, nil
}

// buildOrder locks every line at the product's current price. A line whose
// product no longer resolves at all fails the checkout.
func (s *Service) buildOrder(ctx context.Context, user primitive.ObjectID, address string, items []models.CartItem) (*models.Order, error) {
	ids := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		ids[i] = it.Product
	}
	found, err := s.products.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(items))
	var total float64
	for _, it := range items {
		p, ok := found[it.Product]
		if !ok {
			return nil, utils.NotFound("Product " + it.Product.Hex() + " not found")
		}
		lines = append(lines, models.OrderLine{Product: p.ID, Quantity: it.Quantity, Price: p.Price})
		total += p.Price * float64(it.Quantity)
	}

	now := s.now().UTC()
	return &models.Order{
		ID:              primitive.NewObjectID(),
		User:            user,
		Products:        lines,
		TotalAmount:     utils.RoundMoney(total),
		ShippingAddress: address,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *Service) ListMyOrders(ctx context.Context, user primitive.ObjectID) ([]models.OrderView, error) {
	list, err := s.store.FindByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, list)
}

func (s *Service) ListAll(ctx context.Context) ([]models.OrderView, error) {
	list, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, list)
}

// Get returns the order to its owner or an admin. Other callers see NotFound.
func (s *Service) Get(ctx context.Context, id string, caller primitive.ObjectID, admin bool) (*models.OrderView, error) {
	o, err := s.visible(ctx, id, caller, admin)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, []models.Order{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateOrderStatus changes orderStatus and/or paymentStatus. Values outside
// the enums are rejected.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, upd models.StatusUpdate) (*models.Order, error) {
	oid, err := utils.ParseObjectID(id, "order")
	if err != nil {
		return nil, err
	}
	if upd.OrderStatus == nil && upd.PaymentStatus == nil {
		return nil, utils.Validation("orderStatus or paymentStatus is required")
	}
	if upd.OrderStatus != nil && !models.ValidOrderStatus(*upd.OrderStatus) {
		return nil, utils.Validation("Invalid order status")
	}
	if upd.PaymentStatus != nil && !models.ValidPaymentStatus(*upd.PaymentStatus) {
		return nil, utils.Validation("Invalid payment status")
	}

	o, err := s.store.SetStatus(ctx, oid, upd, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, utils.NotFound("Order not found")
	}

	s.publish(ctx, models.NewOrderEvent(models.EventOrderUpdated, o))
	return o, nil
}

// Invoice renders the PDF invoice for an order its caller may see.
func (s *Service) Invoice(ctx context.Context, id string, caller primitive.ObjectID, admin bool) ([]byte, error) {
	view, err := s.Get(ctx, id, caller, admin)
	if err != nil {
		return nil, err
	}
	return RenderInvoice(view)
}

func (s *Service) visible(ctx context.Context, id string, caller primitive.ObjectID, admin bool) (*models.Order, error) {
	oid, err := utils.ParseObjectID(id, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o == nil || (!admin && o.User != caller) {
		return nil, utils.NotFound("Order not found")
	}
	return o, nil
}

func (s *Service) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithTransaction(ctx, fn)
}

// publish is best effort; the order is already committed.
func (s *Service) publish(ctx context.Context, ev models.OrderEvent) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Printf("publish %s for order %s: %v", ev.Type, ev.OrderID, err)
	}
}

func (s *Service) resolve(ctx context.Context, list []models.Order) ([]models.OrderView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, o := range list {
		for _, l := range o.Products {
			if !seen[l.Product] {
				seen[l.Product] = true
				ids = append(ids, l.Product)
			}
		}
	}
	found, err := s.products.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.OrderView, len(list))
	for i, o := range list {
		lines := make([]models.ResolvedOrderLine, len(o.Products))
		for j, l := range o.Products {
			lines[j] = models.ResolvedOrderLine{Quantity: l.Quantity, Price: l.Price}
			if p, ok := found[l.Product]; ok {
				lines[j].Product = &p
			}
		}
		views[i] = models.OrderView{
			ID:              o.ID,
			User:            o.User,
			Products:        lines,
			TotalAmount:     o.TotalAmount,
			ShippingAddress: o.ShippingAddress,
			PaymentStatus:   o.PaymentStatus,
			OrderStatus:     o.OrderStatus,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
	}
	return views, nil
}
