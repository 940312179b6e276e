package products

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 16
	PromoLimit      = 8
)

// ProductInput is the create payload.
type ProductInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0,cents"`
	PromoPrice    *float64 `json:"promoPrice" validate:"omitempty,gte=0,cents"`
	Category      string   `json:"category" validate:"omitempty,oneof=phone laptop headset accessory smartwatch tablet gaming"`
	Condition     string   `json:"condition" validate:"omitempty,oneof='UK Used' 'Brand New'"`
	Brand         string   `json:"brand"`
	Image         string   `json:"image"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitempty,gte=0"`
	InStock       *bool    `json:"inStock"`
	Featured      bool     `json:"featured"`
	Negotiable    bool     `json:"negotiable"`
}

// ProductPatch is the partial update payload. Nil fields are left unchanged.
type ProductPatch struct {
	Name            *string  `json:"name" validate:"omitempty,min=1"`
	Description     *string  `json:"description" validate:"omitempty,min=1"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0,cents"`
	PromoPrice      *float64 `json:"promoPrice" validate:"omitempty,gte=0,cents"`
	ClearPromoPrice bool     `json:"clearPromoPrice"`
	Category        *string  `json:"category" validate:"omitempty,oneof=phone laptop headset accessory smartwatch tablet gaming"`
	Condition       *string  `json:"condition" validate:"omitempty,oneof='UK Used' 'Brand New'"`
	Brand           *string  `json:"brand"`
	Image           *string  `json:"image"`
	StockQuantity   *int     `json:"stockQuantity" validate:"omitempty,gte=0"`
	InStock         *bool    `json:"inStock"`
	Featured        *bool    `json:"featured"`
	Negotiable      *bool    `json:"negotiable"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns every product that has not been soft-deleted.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.store.Find(ctx, activeFilter(), FindOptions{})
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.Active(ctx, oid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Active returns a product that exists and is not soft-deleted.
func (s *Service) Active(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	filter := activeFilter()
	filter["_id"] = id
	p, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.NotFound("Product not found")
	}
	return p, nil
}

// Resolve loads products by id, soft-deleted ones included, for populating
// cart and order references. Unknown ids are absent from the map.
func (s *Service) Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.store.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, FindOptions{})
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		out[p.ID] = p
	}
	return out, nil
}

// FilteredQuery pages through non-deleted products matching q.
func (s *Service) FilteredQuery(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Category != "" && !slices.Contains(models.Categories, q.Category) {
		return nil, utils.Validation("Invalid category")
	}
	if q.Condition != "" && !slices.Contains(models.Conditions, q.Condition) {
		return nil, utils.Validation("Invalid condition")
	}

	filter := QueryFilter(q)
	items, err := s.store.Find(ctx, filter, FindOptions{
		Skip:  int64(q.Page-1) * int64(q.Limit),
		Limit: int64(q.Limit),
	})
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.ProductPage{
		Items:      items,
		Page:       q.Page,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		TotalItems: total,
	}, nil
}

func (s *Service) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, utils.Validation("Search query is required")
	}
	return s.store.Find(ctx, SearchFilter(term), FindOptions{})
}

func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	return s.store.Find(ctx, FeaturedFilter(), FindOptions{NewestFirst: true})
}

func (s *Service) Promos(ctx context.Context) ([]models.Product, error) {
	return s.store.Find(ctx, PromoFilter(), FindOptions{NewestFirst: true, Limit: PromoLimit})
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	created, err := s.BulkCreate(ctx, []ProductInput{in})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// BulkCreate validates every input before inserting any of them.
func (s *Service) BulkCreate(ctx context.Context, in []ProductInput) ([]models.Product, error) {
	if len(in) == 0 {
		return nil, utils.Validation("No products provided")
	}

	now := s.now().UTC()
	docs := make([]*models.Product, 0, len(in))
	for _, input := range in {
		if err := utils.ValidateStruct(input); err != nil {
			return nil, err
		}
		docs = append(docs, newProduct(input, now))
	}

	if err := s.store.InsertMany(ctx, docs); err != nil {
		return nil, err
	}

	out := make([]models.Product, len(docs))
	for i, d := range docs {
		out[i] = *d
	}
	return out, nil
}

func newProduct(in ProductInput, now time.Time) *models.Product {
	p := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		PromoPrice:  in.PromoPrice,
		Category:    in.Category,
		Condition:   in.Condition,
		Brand:       strings.TrimSpace(in.Brand),
		Image:       in.Image,
		InStock:     true,
		Featured:    in.Featured,
		Negotiable:  in.Negotiable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Category == "" {
		p.Category = models.CategoryPhone
	}
	if p.Condition == "" {
		p.Condition = models.ConditionUKUsed
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}

func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	oid, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": s.now().UTC()}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		set["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.ClearPromoPrice {
		set["promoPrice"] = nil
	} else if patch.PromoPrice != nil {
		set["promoPrice"] = *patch.PromoPrice
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Condition != nil {
		set["condition"] = *patch.Condition
	}
	if patch.Brand != nil {
		set["brand"] = strings.TrimSpace(*patch.Brand)
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.StockQuantity != nil {
		set["stockQuantity"] = *patch.StockQuantity
	}
	if patch.InStock != nil {
		set["inStock"] = *patch.InStock
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}
	if patch.Negotiable != nil {
		set["negotiable"] = *patch.Negotiable
	}

	return s.updateActive(ctx, oid, set, "Product does not exist")
}

// SoftDelete flags the product as deleted. Deleting twice is NotFound.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	oid, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return err
	}
	_, err = s.updateActive(ctx, oid, bson.M{"isDeleted": true, "updatedAt": s.now().UTC()}, "Product not found or already deleted")
	return err
}

func (s *Service) SetImage(ctx context.Context, id primitive.ObjectID, path string) (*models.Product, error) {
	return s.updateActive(ctx, id, bson.M{"image": path, "updatedAt": s.now().UTC()}, "Product does not exist")
}

func (s *Service) updateActive(ctx context.Context, id primitive.ObjectID, set bson.M, missing string) (*models.Product, error) {
	filter := activeFilter()
	filter["_id"] = id
	p, err := s.store.UpdateOne(ctx, filter, set)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.NotFound(missing)
	}
	return p, nil
}
