package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"gadgethub/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB holds the client and the four collections the storefront persists to.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database

	ProductCollection *mongo.Collection
	UserCollection    *mongo.Collection
	CartCollection    *mongo.Collection
	OrderCollection   *mongo.Collection

	transactions bool
}

// Connect dials MongoDB and pings the primary.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Printf("Connected to MongoDB database %q", cfg.MongoDB)
	return New(client, cfg.MongoDB, cfg.MongoTransactions), nil
}

func New(client *mongo.Client, name string, transactions bool) *DB {
	database := client.Database(name)
	return &DB{
		Client:            client,
		Database:          database,
		ProductCollection: database.Collection("products"),
		UserCollection:    database.Collection("users"),
		CartCollection:    database.Collection("carts"),
		OrderCollection:   database.Collection("orders"),
		transactions:      transactions,
	}
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// CreateIndexes sets up the uniqueness constraints the stores rely on.
func (d *DB) CreateIndexes(ctx context.Context) error {
	if _, err := d.UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_phone")},
	}); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	if _, err := d.CartCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_cart_user"),
	}); err != nil {
		return fmt.Errorf("cart indexes: %w", err)
	}

	if _, err := d.OrderCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_created"),
	}); err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}

	if _, err := d.ProductCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "category", Value: 1}, {Key: "price", Value: 1}}, Options: options.Index().SetName("catalog_filter")},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "featured", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("catalog_featured")},
	}); err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside a multi-document transaction when the
// deployment supports it (MONGO_TRANSACTIONS=true, replica set). Otherwise fn
// runs directly and its writes are not atomic as a group.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.transactions {
		return fn(ctx)
	}

	session, err := d.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
