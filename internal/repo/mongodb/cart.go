package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// CartRepository stores carts as whole documents. Totals are not persisted;
// they are recomputed on every load.
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{
		collection: db.Database.Collection("carts"),
	}
}

func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if _, err := r.collection.InsertOne(ctx, cart); err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Get(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	cart.Recompute()
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrCartNotFound
	}
	return nil
}
