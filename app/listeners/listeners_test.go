package listeners_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/listeners"
	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

func TestRegisterCoversEveryEvent(t *testing.T) {
	bus := event.NewBus()
	listeners.Register(bus, nil)

	for _, name := range []string{
		services.EventUserRegistered, services.EventLoginFailed,
		services.EventProductSaved, services.EventProductDeleted,
		services.EventOrderPlaced, services.EventOrderUpdated,
	} {
		assert.Equal(t, 1, bus.Count(name), name)
	}
}

func TestListenersCountMetrics(t *testing.T) {
	bus := event.NewBus()
	listeners.Register(bus, nil)
	ctx := context.Background()

	wholesalers := metrics.UsersRegistered.WithLabelValues("wholesaler")
	before := testutil.ToFloat64(wholesalers)
	bus.Fire(ctx, services.EventUserRegistered, models.User{ID: primitive.NewObjectID(), Role: auth.RoleWholesaler})
	assert.Equal(t, before+1, testutil.ToFloat64(wholesalers))

	failures := testutil.ToFloat64(metrics.LoginFailures)
	bus.Fire(ctx, services.EventLoginFailed, "ghost@x.com")
	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.LoginFailures))

	created := metrics.CatalogChanges.WithLabelValues(services.ProductCreated)
	before = testutil.ToFloat64(created)
	bus.Fire(ctx, services.EventProductSaved, services.ProductEvent{Action: services.ProductCreated, Product: models.Product{ID: primitive.NewObjectID()}})
	assert.Equal(t, before+1, testutil.ToFloat64(created))

	unspecified := metrics.OrdersPlaced.WithLabelValues("unspecified")
	before = testutil.ToFloat64(unspecified)
	bus.Fire(ctx, services.EventOrderPlaced, models.Order{ID: primitive.NewObjectID()})
	assert.Equal(t, before+1, testutil.ToFloat64(unspecified))
}

func TestListenersIgnoreForeignPayloads(t *testing.T) {
	bus := event.NewBus()
	listeners.Register(bus, nil)

	assert.NotPanics(t, func() {
		bus.Fire(context.Background(), services.EventOrderPlaced, "not an order")
		bus.Fire(context.Background(), services.EventProductSaved, 42)
	})
}

func TestProductWritesInvalidateListing(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := cache.Connect(ctx, mr.Addr(), "", "tb:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	bus := event.NewBus()
	listeners.Register(bus, c)

	owner := primitive.NewObjectID()
	key := services.ProductsByWholesalerCacheKey(owner.Hex())
	require.NoError(t, c.Set(ctx, key, []string{"stale"}, 0))
	require.NoError(t, c.Set(ctx, services.WholesalersCacheKey, []string{"stale"}, 0))

	bus.Fire(ctx, services.EventProductSaved, services.ProductEvent{
		Action:  services.ProductUpdated,
		Product: models.Product{ID: primitive.NewObjectID(), Wholesaler: owner},
	})
	assert.False(t, mr.Exists("tb:"+key))
	assert.True(t, mr.Exists("tb:"+services.WholesalersCacheKey))

	bus.Fire(ctx, services.EventUserRegistered, models.User{ID: primitive.NewObjectID(), Role: auth.RoleWholesaler})
	assert.False(t, mr.Exists("tb:"+services.WholesalersCacheKey))
}
