package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryPhone      = "phone"
	CategoryLaptop     = "laptop"
	CategoryHeadset    = "headset"
	CategoryAccessory  = "accessory"
	CategorySmartwatch = "smartwatch"
	CategoryTablet     = "tablet"
	CategoryGaming     = "gaming"
)

var Categories = []string{
	CategoryPhone, CategoryLaptop, CategoryHeadset, CategoryAccessory,
	CategorySmartwatch, CategoryTablet, CategoryGaming,
}

const (
	ConditionUKUsed   = "UK Used"
	ConditionBrandNew = "Brand New"
)

var Conditions = []string{ConditionUKUsed, ConditionBrandNew}

type Product struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	PromoPrice    *float64           `json:"promoPrice" bson:"promoPrice"`
	Category      string             `json:"category" bson:"category"`
	Condition     string             `json:"condition" bson:"condition"`
	Negotiable    bool               `json:"negotiable" bson:"negotiable"`
	InStock       bool               `json:"inStock" bson:"inStock"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	Brand         string             `json:"brand,omitempty" bson:"brand,omitempty"`
	StockQuantity int                `json:"stockQuantity" bson:"stockQuantity"`
	IsDeleted     bool               `json:"isDeleted" bson:"isDeleted"`
	Featured      bool               `json:"featured" bson:"featured"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductQuery is the conjunctive filter behind the advanced product listing.
// Nil fields do not constrain the result.
type ProductQuery struct {
	Category  string
	Brand     string
	Condition string
	InStock   *bool
	MinPrice  *float64
	MaxPrice  *float64
	Page      int
	Limit     int
}

type ProductPage struct {
	Items      []Product `json:"data"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	TotalItems int64     `json:"totalItems"`
}
