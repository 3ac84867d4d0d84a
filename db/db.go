package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB holds the Mongo client and every collection the handlers touch. It is
// built once at startup and injected; there is no lazy global connection.
type DB struct {
	Client *mongo.Client

	Users    *mongo.Collection
	Products *mongo.Collection
	Orders   *mongo.Collection
	Reviews  *mongo.Collection
	Carts    *mongo.Collection
}

// Connect dials MongoDB, pings it, and prepares the named collections.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	d := &DB{
		Client:   client,
		Users:    client.Database(database).Collection("users"),
		Products: client.Database(database).Collection("products"),
		Orders:   client.Database(database).Collection("orders"),
		Reviews:  client.Database(database).Collection("reviews"),
		Carts:    client.Database(database).Collection("carts"),
	}
	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Close releases the connection. Call on shutdown.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// ensureIndexes backs the application-level invariants with storage-level
// constraints: unique email/phone per user, one review per user per product,
// and the sort/filter paths used on every listing.
func (d *DB) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := d.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = d.Products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = d.Orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = d.Reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}
