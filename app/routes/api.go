package routes

import (
	"github.com/tradebridge/tradebridge/app/controllers"
	"github.com/tradebridge/tradebridge/pkg/ctx"
	"github.com/tradebridge/tradebridge/pkg/middleware"
	"github.com/tradebridge/tradebridge/pkg/rbac"
	"github.com/tradebridge/tradebridge/pkg/router"
)

// Controllers groups the handlers RegisterAPI mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
}

// RegisterAPI mounts the JSON API under /api. Routes that need a caller go
// through Authenticate; wholesaler-only routes also pass rbac.Require.
// Ownership is checked by the services once the record is loaded.
func RegisterAPI(r *router.Router, h Controllers, verifier middleware.TokenVerifier) {
	api := r.Group("/api")

	// Public
	api.Post("/signup", "auth.signup", ctx.Wrap(h.Auth.Signup))
	api.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))
	api.Get("/wholesalers", "wholesalers.index", ctx.Wrap(h.Auth.Wholesalers))
	api.Get("/products", "products.search", ctx.Wrap(h.Products.Search))
	api.Get("/products/wholesaler/{id}", "products.by_wholesaler", ctx.Wrap(h.Products.ByWholesaler))
	api.Post("/orders", "orders.store", ctx.Wrap(h.Orders.Place))
	api.Post("/create-order", "payments.create_order", ctx.Wrap(h.Payments.CreateOrder))
	api.Get("/get-razorpay-key", "payments.key", ctx.Wrap(h.Payments.Key))

	// Authenticated
	authed := api.Group("", middleware.Authenticate(verifier))
	authed.Get("/users/me", "users.me", ctx.Wrap(h.Auth.Me))
	authed.Put("/users/me/password", "users.password", ctx.Wrap(h.Auth.ChangePassword))
	authed.Put("/products/{id}", "products.update", ctx.Wrap(h.Products.Update))
	authed.Delete("/products/{id}", "products.destroy", ctx.Wrap(h.Products.Delete))
	authed.Get("/orders", "orders.index", ctx.Wrap(h.Orders.List))
	authed.Put("/orders/{id}", "orders.update", ctx.Wrap(h.Orders.Update))

	// Wholesaler only
	authed.Get("/products/my", "products.mine", ctx.Wrap(h.Products.Mine), rbac.Require(rbac.ListOwnProducts))
	authed.Post("/products", "products.store", ctx.Wrap(h.Products.Create), rbac.Require(rbac.CreateProduct))
	authed.Post("/uploads/images", "uploads.images", ctx.Wrap(h.Products.UploadImage), rbac.Require(rbac.UploadImage))
}
