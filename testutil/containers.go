//go:build integration

// Package testutil starts throwaway MongoDB and Redis containers for the
// integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"gadgethub/db"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func startContainer(t *testing.T, image, port string) (testcontainers.Container, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port + "/tcp"},
			WaitingFor:   wait.ForListeningPort(nat.Port(port + "/tcp")).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return container, host + ":" + mapped.Port()
}

// StartMongo returns a database with the storefront indexes in place.
func StartMongo(t *testing.T) *db.DB {
	t.Helper()
	_, addr := startContainer(t, "mongo:7", "27017")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+addr))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	database := db.New(client, "gadgethub_test", false)
	require.NoError(t, database.CreateIndexes(ctx))
	t.Cleanup(func() { _ = database.Close(context.Background()) })
	return database
}

func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	_, addr := startContainer(t, "redis:7-alpine", "6379")

	conn := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, conn.Ping(ctx).Err())
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
