// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// This package is imported by cmd/tradebridge to ensure all
// migrations are registered at CLI startup.
package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexMigration creates a set of named indexes on one collection and
// drops them again on rollback.
type indexMigration struct {
	collection string
	indexes    []mongo.IndexModel
}

func (m *indexMigration) Up(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().CreateMany(ctx, m.indexes)
	return err
}

func (m *indexMigration) Down(ctx context.Context, db *mongo.Database) error {
	view := db.Collection(m.collection).Indexes()
	for _, idx := range m.indexes {
		if _, err := view.DropOne(ctx, *idx.Options.Name); err != nil {
			return err
		}
	}
	return nil
}

func index(name string, unique bool, keys ...bson.E) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: bson.D(keys), Options: opts}
}
