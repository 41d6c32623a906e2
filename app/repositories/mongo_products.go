package repositories

import (
	"context"
	"fmt"
	"regexp"
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

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// MongoProducts is the MongoDB ProductRepository.
type MongoProducts struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoProducts returns a ProductRepository over db's products collection.
func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{col: db.Collection(database.Products), now: time.Now}
}

func (r *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery(database.Products, "insert", time.Now())

	now := r.now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		p.ID = primitive.NilObjectID
		return fmt.Errorf("products: insert: %w", err)
	}
	return nil
}

func (r *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	defer metrics.ObserveDBQuery(database.Products, "find_one", time.Now())

	var p models.Product
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("products: find: %w", err)
	}
	return &p, nil
}

func (r *MongoProducts) ListByWholesaler(ctx context.Context, wholesaler primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.D{{Key: "wholesaler", Value: wholesaler}})
}

func (r *MongoProducts) Search(ctx context.Context, query string) ([]models.Product, error) {
	if query == "" {
		return r.find(ctx, bson.D{})
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "name", Value: rx}},
		bson.D{{Key: "category", Value: rx}},
	}}})
}

func (r *MongoProducts) find(ctx context.Context, filter bson.D) ([]models.Product, error) {
	defer metrics.ObserveDBQuery(database.Products, "find", time.Now())

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	return products, nil
}

func (r *MongoProducts) UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	defer metrics.ObserveDBQuery(database.Products, "update", time.Now())

	filter := bson.D{{Key: "_id", Value: id}, {Key: "wholesaler", Value: owner}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": patch.set(r.now().UTC())}, opts).Decode(&p)
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	return &p, nil
}

func (r *MongoProducts) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error {
	defer metrics.ObserveDBQuery(database.Products, "delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "wholesaler", Value: owner}})
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	return nil
}
