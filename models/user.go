package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name                    string             `json:"name" bson:"name"`
	Email                   string             `json:"email" bson:"email"`
	Phone                   string             `json:"phone" bson:"phone"`
	Password                string             `json:"-" bson:"password"`
	Role                    string             `json:"role" bson:"role"`
	IsVerified              bool               `json:"isVerified" bson:"isVerified"`
	VerificationCode        string             `json:"-" bson:"verificationCode,omitempty"`
	VerificationCodeExpires *time.Time         `json:"-" bson:"verificationCodeExpires,omitempty"`
	VerifiedAt              *time.Time         `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	CreatedAt               time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt               time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserUpdate carries the optional fields of a profile or admin edit.
type UserUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,min=7"`
	Role  *string `json:"role" validate:"omitempty,oneof=User Admin"`
}

type DashboardMetrics struct {
	TotalProducts    int64   `json:"totalProducts"`
	InStockProducts  int64   `json:"inStockProducts"`
	FeaturedProducts int64   `json:"featuredProducts"`
	PromoProducts    int64   `json:"promoProducts"`
	TotalUsers       int64   `json:"totalUsers"`
	TotalOrders      int64   `json:"totalOrders"`
	Sales            float64 `json:"sales"`
}
