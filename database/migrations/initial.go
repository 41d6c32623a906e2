package migrations

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradebridge/tradebridge/pkg/database"
	"github.com/tradebridge/tradebridge/pkg/migration"
)

func init() {
	migration.Register("20260101000000_users_indexes", UsersIndexes)
	migration.Register("20260101000001_products_indexes", ProductsIndexes)
	migration.Register("20260101000002_orders_indexes", OrdersIndexes)
}

// -------- 0001: users --------

// UsersIndexes enforces unique emails and backs the wholesaler directory.
var UsersIndexes = &indexMigration{
	collection: database.Users,
	indexes: []mongo.IndexModel{
		index("email_unique", true, bson.E{Key: "email", Value: 1}),
		index("role_created", false, bson.E{Key: "role", Value: 1}, bson.E{Key: "createdAt", Value: -1}),
	},
}

// -------- 0002: products --------

// ProductsIndexes backs per-wholesaler listings and the newest-first search.
var ProductsIndexes = &indexMigration{
	collection: database.Products,
	indexes: []mongo.IndexModel{
		index("wholesaler_created", false, bson.E{Key: "wholesaler", Value: 1}, bson.E{Key: "createdAt", Value: -1}),
		index("created_desc", false, bson.E{Key: "createdAt", Value: -1}),
	},
}

// -------- 0003: orders --------

var OrdersIndexes = &indexMigration{
	collection: database.Orders,
	indexes: []mongo.IndexModel{
		index("created_desc", false, bson.E{Key: "createdAt", Value: -1}),
	},
}
