// Package payment creates charge orders with the Razorpay payment gateway.
//
// Only order creation is implemented: the client completes the payment with
// the gateway directly, and callbacks are not verified here.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/httpclient"
	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

// Gateway creates charge orders with a payment processor.
type Gateway interface {
	// CreateChargeOrder registers a charge for amount and returns the
	// processor's order object verbatim.
	CreateChargeOrder(ctx context.Context, amount float64) (json.RawMessage, error)
	// PublicKey returns the publishable key id handed to clients.
	PublicKey() string
}

// ChargeRequest is the body sent to POST /v1/orders.
type ChargeRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Razorpay is the Gateway backed by the Razorpay Orders API.
type Razorpay struct {
	client    *httpclient.Client
	keyID     string
	keySecret string
	baseURL   string
	currency  string
	now       func() time.Time
}

// NewRazorpay returns a gateway using cfg's credentials.
func NewRazorpay(cfg config.PaymentConfig, client *httpclient.Client) *Razorpay {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Razorpay{
		client:    client,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		currency:  currency,
		now:       time.Now,
	}
}

func (r *Razorpay) PublicKey() string { return r.keyID }

// CreateChargeOrder rounds amount half away from zero to a whole unit and
// creates the order. One attempt is made; any transport failure or non-2xx
// answer is an upstream gateway error.
func (r *Razorpay) CreateChargeOrder(ctx context.Context, amount float64) (json.RawMessage, error) {
	units, err := RoundAmount(amount)
	if err != nil {
		return nil, err
	}

	req := ChargeRequest{
		Amount:   units,
		Currency: r.currency,
		Receipt:  NewReceipt(r.now()),
	}

	start := time.Now()
	resp, err := r.client.Post(r.baseURL+"/v1/orders").
		WithContext(ctx).
		BasicAuth(r.keyID, r.keySecret).
		Body(req).
		Send()
	if err == nil {
		err = resp.Throw()
	}
	metrics.ObserveGateway(err, start)

	if err != nil {
		logger.WithCtx(ctx).Error("payment: create order failed", "receipt", req.Receipt, "error", err)
		return nil, apperr.Upstream(err)
	}
	if !json.Valid(resp.Raw) {
		return nil, apperr.Upstream(fmt.Errorf("payment: gateway returned non-JSON body"))
	}

	logger.WithCtx(ctx).Info("payment: order created", "receipt", req.Receipt, "amount", units, "currency", r.currency)
	return json.RawMessage(resp.Raw), nil
}

// RoundAmount rounds half away from zero to an integer. Amounts that are
// not positive or that round below 1 are validation errors.
func RoundAmount(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperr.Invalid("Amount must be a number")
	}
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return 0, apperr.Invalid("Amount must be greater than 0")
	}
	rounded := d.Round(0)
	if rounded.LessThan(decimal.NewFromInt(1)) {
		return 0, apperr.Invalid("Amount must be at least 1")
	}
	return rounded.IntPart(), nil
}

// NewReceipt returns "receipt_<unix-ms>_<8 hex chars>".
func NewReceipt(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("receipt_%d_%s", now.UnixMilli(), suffix)
}
