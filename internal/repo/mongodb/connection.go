package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

type ConnectionOptions struct {
	Hosts    []string
	Direct   bool
	Username string
	Password string
	AuthDB   string
	Database string
}

func NewConnection(ctx context.Context, opts ConnectionOptions) (*DB, error) {
	clientOptions := options.Client().
		SetAppName("smart-cart").
		SetHosts(opts.Hosts).
		SetMaxPoolSize(10).
		SetMaxConnIdleTime(30 * time.Second).
		SetTimeout(10 * time.Second).
		SetDirect(opts.Direct)

	// Only set auth if password is provided
	if opts.Password != "" {
		clientOptions.SetAuth(options.Credential{
			AuthSource: opts.AuthDB,
			Username:   opts.Username,
			Password:   opts.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(opts.Database),
	}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
