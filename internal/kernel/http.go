// Package kernel assembles the HTTP handler: global middleware, the API
// routes, /metrics and the local storage file server.
package kernel

import (
	"net/http"

	"github.com/tradebridge/tradebridge/app/controllers"
	"github.com/tradebridge/tradebridge/app/listeners"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/app/routes"
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/metrics"
	"github.com/tradebridge/tradebridge/pkg/middleware"
	"github.com/tradebridge/tradebridge/pkg/payment"
	"github.com/tradebridge/tradebridge/pkg/reqid"
	"github.com/tradebridge/tradebridge/pkg/response"
	"github.com/tradebridge/tradebridge/pkg/router"
	"github.com/tradebridge/tradebridge/pkg/storage"
)

// StoragePrefix is where the local disk is served.
const StoragePrefix = "/storage"

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
	Issuer   *auth.Issuer
	Gateway  payment.Gateway
	Disk     storage.Disk
	Cache    *cache.Store
	Bus      *event.Bus

	CORSOrigins []string
}

// Router builds the router with every route registered. When Bus is nil a
// new one is created and the listeners are attached to it.
func Router(d Deps) *router.Router {
	if d.Bus == nil {
		d.Bus = event.NewBus()
		listeners.Register(d.Bus, d.Cache)
	}

	r := router.New()

	// Global middleware, outermost first:
	//  1. metrics   - total latency including everything below
	//  2. recovery  - panics become a 500 envelope
	//  3. request id
	//  4. logger    - logs with the request id attached
	//  5. CORS
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(d.CORSOrigins...)))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	if local, ok := d.Disk.(*storage.LocalDisk); ok {
		r.Mount(StoragePrefix, "storage", local.FileServer(StoragePrefix))
	}

	authSvc := services.NewAuthService(d.Users, d.Issuer, d.Cache, d.Bus)
	catalog := services.NewCatalogService(d.Products, d.Users, d.Cache, d.Bus)
	orders := services.NewOrderService(d.Orders, d.Bus)
	images := services.NewImageService(d.Disk)

	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authSvc),
		Products: controllers.NewProductController(catalog, images),
		Orders:   controllers.NewOrderController(orders),
		Payments: controllers.NewPaymentController(d.Gateway),
	}, d.Issuer)

	return r
}

// Handler is Router(d).Handler().
func Handler(d Deps) http.Handler {
	return Router(d).Handler()
}
