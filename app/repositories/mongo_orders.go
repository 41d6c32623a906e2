package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/database"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

// MongoOrders is the MongoDB OrderRepository.
type MongoOrders struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoOrders returns an OrderRepository over db's orders collection.
func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{col: db.Collection(database.Orders), now: time.Now}
}

func (r *MongoOrders) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery(database.Orders, "insert", time.Now())

	now := r.now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt, o.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, o); err != nil {
		o.ID = primitive.NilObjectID
		return fmt.Errorf("orders: insert: %w", err)
	}
	return nil
}

func (r *MongoOrders) List(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery(database.Orders, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

func (r *MongoOrders) Update(ctx context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error) {
	defer metrics.ObserveDBQuery(database.Orders, "update", time.Now())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.M{"$set": patch.set(r.now().UTC())}, opts).Decode(&o)
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("orders: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("orders: update: %w", err)
	}
	return &o, nil
}
