package services

import (
	"github.com/tradebridge/tradebridge/app/models"
)

// Domain events fired after a successful write.
const (
	EventUserRegistered = "user.registered"
	EventLoginFailed    = "user.login_failed"
	EventProductSaved   = "product.saved"
	EventProductDeleted = "product.deleted"
	EventOrderPlaced    = "order.placed"
	EventOrderUpdated   = "order.updated"
)

// Product event actions.
const (
	ProductCreated = "created"
	ProductUpdated = "updated"
	ProductDeleted = "deleted"
)

// ProductEvent is the payload of EventProductSaved and EventProductDeleted.
type ProductEvent struct {
	Action  string
	Product models.Product
}

// Cache keys of the public listings.
const WholesalersCacheKey = "wholesalers"

// ProductsByWholesalerCacheKey is the cache key of one wholesaler's public
// product listing.
func ProductsByWholesalerCacheKey(wholesalerID string) string {
	return "products:wholesaler:" + wholesalerID
}
