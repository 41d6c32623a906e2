// Package listeners reacts to domain events: it logs them, counts them and
// drops the cached public listings they make stale.
package listeners

import (
	"context"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

// Register attaches all listeners to bus. c may be nil or disabled.
func Register(bus *event.Bus, c *cache.Store) {
	bus.Listen(services.EventUserRegistered, func(ctx context.Context, payload any) {
		u, ok := payload.(models.User)
		if !ok {
			return
		}
		metrics.UsersRegistered.WithLabelValues(string(u.Role)).Inc()
		logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex(), "role", u.Role)
		if u.Role == auth.RoleWholesaler {
			forget(ctx, c, services.WholesalersCacheKey)
		}
	})

	bus.Listen(services.EventLoginFailed, func(ctx context.Context, _ any) {
		metrics.LoginFailures.Inc()
		logger.WithCtx(ctx).Warn("login rejected")
	})

	onProduct := func(ctx context.Context, payload any) {
		e, ok := payload.(services.ProductEvent)
		if !ok {
			return
		}
		metrics.CatalogChanges.WithLabelValues(e.Action).Inc()
		logger.WithCtx(ctx).Info("product "+e.Action,
			"product_id", e.Product.ID.Hex(),
			"wholesaler", e.Product.Wholesaler.Hex(),
		)
		forget(ctx, c, services.ProductsByWholesalerCacheKey(e.Product.Wholesaler.Hex()))
	}
	bus.Listen(services.EventProductSaved, onProduct)
	bus.Listen(services.EventProductDeleted, onProduct)

	bus.Listen(services.EventOrderPlaced, func(ctx context.Context, payload any) {
		o, ok := payload.(models.Order)
		if !ok {
			return
		}
		method := o.PaymentMethod
		if method == "" {
			method = "unspecified"
		}
		metrics.OrdersPlaced.WithLabelValues(method).Inc()
		logger.WithCtx(ctx).Info("order placed", "order_id", o.ID.Hex(), "payment_method", method)
	})

	bus.Listen(services.EventOrderUpdated, func(ctx context.Context, payload any) {
		o, ok := payload.(models.Order)
		if !ok {
			return
		}
		logger.WithCtx(ctx).Info("order updated",
			"order_id", o.ID.Hex(),
			"status", o.Status,
			"payment_status", o.PaymentStatus,
		)
	})
}

func forget(ctx context.Context, c *cache.Store, keys ...string) {
	if err := c.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("cache: invalidate failed", "keys", keys, "error", err)
	}
}
