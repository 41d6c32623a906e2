// Package repositories persists users, products and orders. Each store has
// a MongoDB implementation and an in-memory one with the same filter and
// ordering rules; listings are newest first.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts u and fills its id and timestamps. An email already in
	// use yields apperr.ErrDuplicateEmail.
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	ListByRole(ctx context.Context, role auth.Role) ([]models.User, error)
}

// ProductRepository stores the catalogue.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListByWholesaler(ctx context.Context, wholesaler primitive.ObjectID) ([]models.Product, error)
	// Search matches name or category case-insensitively. An empty query
	// lists everything.
	Search(ctx context.Context, query string) ([]models.Product, error)
	// UpdateOwned applies patch only when the product belongs to owner.
	UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, patch ProductPatch) (*models.Product, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error
}

// OrderRepository stores orders.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error)
}

// ProductPatch lists the mutable product fields. Nil means unchanged.
type ProductPatch struct {
	Name     *string
	Price    *float64
	Category *string
	Image    *string
}

// OrderPatch lists the mutable order fields. Nil means unchanged.
type OrderPatch struct {
	Address           *string
	PaymentStatus     *string
	RazorpayOrderID   *string
	RazorpayPaymentID *string
	Status            *string
}

// set builds the Mongo $set document; updatedAt is always bumped.
func (p ProductPatch) set(now time.Time) map[string]any {
	m := map[string]any{"updatedAt": now}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Image != nil {
		m["image"] = *p.Image
	}
	return m
}

func (p ProductPatch) apply(dst *models.Product, now time.Time) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	dst.UpdatedAt = now
}

func (p OrderPatch) set(now time.Time) map[string]any {
	m := map[string]any{"updatedAt": now}
	if p.Address != nil {
		m["address"] = *p.Address
	}
	if p.PaymentStatus != nil {
		m["paymentStatus"] = *p.PaymentStatus
	}
	if p.RazorpayOrderID != nil {
		m["razorpayOrderId"] = *p.RazorpayOrderID
	}
	if p.RazorpayPaymentID != nil {
		m["razorpayPaymentId"] = *p.RazorpayPaymentID
	}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	return m
}

func (p OrderPatch) apply(dst *models.Order, now time.Time) {
	if p.Address != nil {
		dst.Address = *p.Address
	}
	if p.PaymentStatus != nil {
		dst.PaymentStatus = *p.PaymentStatus
	}
	if p.RazorpayOrderID != nil {
		dst.RazorpayOrderID = *p.RazorpayOrderID
	}
	if p.RazorpayPaymentID != nil {
		dst.RazorpayPaymentID = *p.RazorpayPaymentID
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	dst.UpdatedAt = now
}
