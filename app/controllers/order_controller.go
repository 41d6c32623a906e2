package controllers

import (
	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/ctx"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// OrderController serves orders.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Place handles POST /api/orders. No authentication is required.
func (oc *OrderController) Place(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.Place(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.H{"order": o})
}

// List handles GET /api/orders.
func (oc *OrderController) List(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context(), c.Identity())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"orders": orders})
}

// Update handles PUT /api/orders/{id}.
func (oc *OrderController) Update(c *ctx.Context) {
	var in services.OrderUpdateInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.Update(c.Context(), c.Identity(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"order": o})
}
