package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gadgethub/memstore"
	"gadgethub/models"
	"gadgethub/users"
	"gadgethub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func str(s string) *string { return &s }

func seedUsers(t *testing.T, store users.Store) (alice, bob *models.User) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	alice = &models.User{Name: "Alice", Email: "alice@example.com", Phone: "08011111111", Password: "hash", Role: "User", CreatedAt: base}
	bob = &models.User{Name: "Bob", Email: "bob@example.com", Phone: "08022222222", Password: "hash", Role: "User", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, store.Insert(ctx, alice))
	require.NoError(t, store.Insert(ctx, bob))
	return alice, bob
}

func TestProfile(t *testing.T) {
	store := memstore.NewUserStore()
	svc := users.NewService(store)
	alice, _ := seedUsers(t, store)
	ctx := context.Background()

	u, err := svc.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	u, err = svc.UpdateProfile(ctx, alice.ID, users.ProfileUpdate{Name: str(" Alice A. "), Phone: str("08033333333")})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", u.Name)
	assert.Equal(t, "08033333333", u.Phone)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "hash", u.Password, "password survives partial updates")

	_, err = svc.UpdateProfile(ctx, alice.ID, users.ProfileUpdate{Phone: str("08022222222")})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	_, err = svc.UpdateProfile(ctx, alice.ID, users.ProfileUpdate{Name: str("")})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = svc.Profile(ctx, primitive.NewObjectID())
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestAdminUserManagement(t *testing.T) {
	store := memstore.NewUserStore()
	svc := users.NewService(store)
	alice, bob := seedUsers(t, store)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].Name)

	u, err := svc.Update(ctx, alice.ID.Hex(), models.UserUpdate{Role: str("Admin"), Email: str("ALICE@shop.io")})
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Role)
	assert.Equal(t, "alice@shop.io", u.Email)

	_, err = svc.Update(ctx, alice.ID.Hex(), models.UserUpdate{Role: str("root")})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = svc.Update(ctx, alice.ID.Hex(), models.UserUpdate{Email: str("not-an-email")})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = svc.Update(ctx, alice.ID.Hex(), models.UserUpdate{Email: str(bob.Email)})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	_, err = svc.Get(ctx, "nope")
	assert.True(t, errors.Is(err, utils.ErrValidation))

	require.NoError(t, svc.Delete(ctx, bob.ID.Hex()))
	err = svc.Delete(ctx, bob.ID.Hex())
	assert.True(t, errors.Is(err, utils.ErrNotFound))
	_, err = svc.Get(ctx, bob.ID.Hex())
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestInsertRejectsDuplicates(t *testing.T) {
	store := memstore.NewUserStore()
	seedUsers(t, store)

	err := store.Insert(context.Background(), &models.User{Name: "Eve", Email: "alice@example.com", Phone: "08099999999"})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	n, err := store.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
