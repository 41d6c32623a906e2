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
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/database"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

// MongoUsers is the MongoDB UserRepository.
type MongoUsers struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoUsers returns a UserRepository over db's users collection.
func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{col: db.Collection(database.Users), now: time.Now}
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery(database.Users, "insert", time.Now())

	now := r.now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		u.ID = primitive.NilObjectID
		if database.IsDuplicateKey(err) {
			return apperr.ErrDuplicateEmail
		}
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	defer metrics.ObserveDBQuery(database.Users, "find_one", time.Now())

	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("users: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return &u, nil
}

func (r *MongoUsers) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	defer metrics.ObserveDBQuery(database.Users, "update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: r.now().UTC()},
	}}})
	if err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("users: %w", apperr.ErrNotFound)
	}
	return nil
}

func (r *MongoUsers) ListByRole(ctx context.Context, role auth.Role) ([]models.User, error) {
	defer metrics.ObserveDBQuery(database.Users, "find", time.Now())

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.D{{Key: "password", Value: 0}})
	cur, err := r.col.Find(ctx, bson.D{{Key: "role", Value: role}}, opts)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("users: decode: %w", err)
	}
	return users, nil
}
