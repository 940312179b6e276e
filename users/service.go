package users

import (
	"context"
	"strings"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileUpdate is what a user may change about themselves.
type ProfileUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Phone *string `json:"phone" validate:"omitempty,min=7"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.store.FindOne(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.NotFound("User not found")
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, models.UserUpdate{Name: in.Name, Phone: in.Phone})
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.store.Find(ctx, bson.M{})
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := utils.ParseObjectID(id, "user")
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, oid)
}

// Update is the admin edit: name, email, phone and role.
func (s *Service) Update(ctx context.Context, id string, in models.UserUpdate) (*models.User, error) {
	oid, err := utils.ParseObjectID(id, "user")
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	return s.apply(ctx, oid, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := utils.ParseObjectID(id, "user")
	if err != nil {
		return err
	}
	deleted, err := s.store.DeleteOne(ctx, ByID(oid))
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NotFound("User not found")
	}
	return nil
}

func (s *Service) apply(ctx context.Context, id primitive.ObjectID, in models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		set["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		set["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		set["role"] = *in.Role
	}

	u, err := s.store.UpdateOne(ctx, ByID(id), set)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.NotFound("User not found")
	}
	return u, nil
}
