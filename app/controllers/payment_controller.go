package controllers

import (
	"net/http"

	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/ctx"
	"github.com/tradebridge/tradebridge/pkg/payment"
	"github.com/tradebridge/tradebridge/pkg/response"
	"github.com/tradebridge/tradebridge/pkg/validate"
)

// chargeInput is the create-order request body.
type chargeInput struct {
	Amount *float64 `json:"amount" validate:"required"`
}

// PaymentController exposes the payment gateway to checkout clients.
type PaymentController struct {
	gateway payment.Gateway
}

func NewPaymentController(gateway payment.Gateway) *PaymentController {
	return &PaymentController{gateway: gateway}
}

// CreateOrder handles POST /api/create-order and returns the gateway's
// order object verbatim.
func (pc *PaymentController) CreateOrder(c *ctx.Context) {
	var in chargeInput
	if !c.BindJSON(&in) {
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		c.Fail(apperr.Validation(errs))
		return
	}
	order, err := pc.gateway.CreateChargeOrder(c.Context(), *in.Amount)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Key handles GET /api/get-razorpay-key.
func (pc *PaymentController) Key(c *ctx.Context) {
	c.JSON(http.StatusOK, response.H{"key": pc.gateway.PublicKey()})
}
