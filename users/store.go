package users

import (
	"context"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned by stores when an email or phone is taken.
var ErrDuplicate = utils.Conflict("User with this email or phone already exists")

// Store persists users. Lookups that match nothing return (nil, nil).
type Store interface {
	FindOne(ctx context.Context, filter bson.M) (*models.User, error)
	Find(ctx context.Context, filter bson.M) ([]models.User, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Insert(ctx context.Context, u *models.User) error
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*models.User, error)
	DeleteOne(ctx context.Context, filter bson.M) (bool, error)
}

func ByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}

// ByIdentifier matches a user by email or phone.
func ByIdentifier(identifier string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"phone": identifier},
	}}
}
