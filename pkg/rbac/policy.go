// Package rbac decides which identities may perform which actions.
//
// Role rules are evaluated at the route with Require; ownership rules are
// evaluated by services with AuthorizeOwner once the target record has been
// loaded, and always before the store is written.
package rbac

import (
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

// Action is a closed enumeration of guarded operations.
type Action int

const (
	CreateProduct Action = iota + 1
	ListOwnProducts
	MutateProduct
	BrowseCatalog
	PlaceOrder
	ListOrders
	UpdateOrder
	ListWholesalers
	UploadImage
	ViewProfile
	ChangePassword
)

var actionNames = map[Action]string{
	CreateProduct:   "create_product",
	ListOwnProducts: "list_own_products",
	MutateProduct:   "mutate_product",
	BrowseCatalog:   "browse_catalog",
	PlaceOrder:      "place_order",
	ListOrders:      "list_orders",
	UpdateOrder:     "update_order",
	ListWholesalers: "list_wholesalers",
	UploadImage:     "upload_image",
	ViewProfile:     "view_profile",
	ChangePassword:  "change_password",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Public reports whether a is allowed without any identity.
func (a Action) Public() bool {
	switch a {
	case BrowseCatalog, PlaceOrder, ListWholesalers:
		return true
	}
	return false
}

// Authorize applies the role rules for a. A nil id means an anonymous
// caller. Unknown actions are denied.
func Authorize(id *auth.Identity, a Action) error {
	if a.Public() {
		return nil
	}
	switch a {
	case MutateProduct, ListOrders, UpdateOrder, ViewProfile, ChangePassword:
		if id == nil {
			return apperr.ErrUnauthorized
		}
		return nil
	case CreateProduct, ListOwnProducts, UploadImage:
		if id == nil {
			return apperr.ErrUnauthorized
		}
		if id.Role != auth.RoleWholesaler {
			return apperr.ErrForbidden
		}
		return nil
	default:
		return apperr.ErrForbidden
	}
}

// AuthorizeOwner applies the ownership rule: the record must exist and be
// owned by the caller. A missing record and a foreign record both yield
// Forbidden so callers cannot learn whether a record exists.
func AuthorizeOwner(id *auth.Identity, found bool, ownerID string) error {
	if id == nil {
		return apperr.ErrUnauthorized
	}
	if !found || ownerID == "" || ownerID != id.UserID {
		return apperr.ErrForbidden
	}
	return nil
}
