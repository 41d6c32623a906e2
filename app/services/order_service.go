package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/rbac"
	"github.com/tradebridge/tradebridge/pkg/validate"
)

// OrderInput is the place-order request body. Orders are a denormalised
// snapshot: no product or user ids are taken.
type OrderInput struct {
	ProductName       string   `json:"productName"       validate:"required,notblank,max=200"`
	Price             *float64 `json:"price"             validate:"required,gte=0"`
	Quantity          int      `json:"quantity"          validate:"required,gte=1"`
	Address           string   `json:"address"           validate:"max=500"`
	PaymentMethod     string   `json:"paymentMethod"     validate:"max=50"`
	PaymentStatus     string   `json:"paymentStatus"     validate:"omitempty,oneof=Pending Paid Failed Refunded"`
	RazorpayOrderID   string   `json:"razorpayOrderId"   validate:"max=100"`
	RazorpayPaymentID string   `json:"razorpayPaymentId" validate:"max=100"`
	CustomerName      string   `json:"customerName"      validate:"max=100"`
	CustomerEmail     string   `json:"customerEmail"     validate:"omitempty,email"`
	CustomerPhone     string   `json:"customerPhone"     validate:"max=20"`
}

// OrderUpdateInput is the update-order request body. Absent fields are left
// unchanged; any transition between statuses is accepted.
type OrderUpdateInput struct {
	Address           *string `json:"address"           validate:"omitnil,max=500"`
	PaymentStatus     *string `json:"paymentStatus"     validate:"omitnil,oneof=Pending Paid Failed Refunded"`
	RazorpayOrderID   *string `json:"razorpayOrderId"   validate:"omitnil,max=100"`
	RazorpayPaymentID *string `json:"razorpayPaymentId" validate:"omitnil,max=100"`
	Status            *string `json:"status"            validate:"omitnil,oneof=Processing Shipped Delivered Cancelled"`
}

// OrderService owns orders.
type OrderService struct {
	orders repositories.OrderRepository
	bus    *event.Bus
}

// NewOrderService wires an OrderService. bus may be nil.
func NewOrderService(orders repositories.OrderRepository, bus *event.Bus) *OrderService {
	return &OrderService{orders: orders, bus: bus}
}

// Place stores a new order. Anyone may place one, anonymous callers included.
func (s *OrderService) Place(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := rbac.Authorize(nil, rbac.PlaceOrder); err != nil {
		return nil, err
	}
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.Validation(errs)
	}

	o := &models.Order{
		ProductName:       in.ProductName,
		Price:             *in.Price,
		Quantity:          in.Quantity,
		Address:           strings.TrimSpace(in.Address),
		PaymentMethod:     strings.TrimSpace(in.PaymentMethod),
		PaymentStatus:     in.PaymentStatus,
		RazorpayOrderID:   in.RazorpayOrderID,
		RazorpayPaymentID: in.RazorpayPaymentID,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerEmail:     in.CustomerEmail,
		CustomerPhone:     strings.TrimSpace(in.CustomerPhone),
	}
	o.ApplyDefaults()

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventOrderPlaced, *o)
	return o, nil
}

// List returns every order, newest first, to any authenticated caller.
func (s *OrderService) List(ctx context.Context, id *auth.Identity) ([]models.Order, error) {
	if err := rbac.Authorize(id, rbac.ListOrders); err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// Update applies a status or payment change to an order.
func (s *OrderService) Update(ctx context.Context, id *auth.Identity, orderID string, in OrderUpdateInput) (*models.Order, error) {
	if err := rbac.Authorize(id, rbac.UpdateOrder); err != nil {
		return nil, err
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.Validation(errs)
	}

	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	o, err := s.orders.Update(ctx, oid, repositories.OrderPatch{
		Address:           in.Address,
		PaymentStatus:     in.PaymentStatus,
		RazorpayOrderID:   in.RazorpayOrderID,
		RazorpayPaymentID: in.RazorpayPaymentID,
		Status:            in.Status,
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventOrderUpdated, *o)
	return o, nil
}
