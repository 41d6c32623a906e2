package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus values.
const (
	PaymentPending  = "Pending"
	PaymentPaid     = "Paid"
	PaymentFailed   = "Failed"
	PaymentRefunded = "Refunded"
)

// Fulfilment status values.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// Order is a denormalised snapshot of a purchase. It deliberately carries
// no user or product id.
type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"               json:"_id"`
	ProductName       string             `bson:"productName"                 json:"productName"`
	Price             float64            `bson:"price"                       json:"price"`
	Quantity          int                `bson:"quantity"                    json:"quantity"`
	Address           string             `bson:"address,omitempty"           json:"address,omitempty"`
	PaymentMethod     string             `bson:"paymentMethod,omitempty"     json:"paymentMethod,omitempty"`
	PaymentStatus     string             `bson:"paymentStatus"               json:"paymentStatus"`
	RazorpayOrderID   string             `bson:"razorpayOrderId,omitempty"   json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string             `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	CustomerName      string             `bson:"customerName,omitempty"      json:"customerName,omitempty"`
	CustomerEmail     string             `bson:"customerEmail,omitempty"     json:"customerEmail,omitempty"`
	CustomerPhone     string             `bson:"customerPhone,omitempty"     json:"customerPhone,omitempty"`
	Status            string             `bson:"status"                      json:"status"`
	CreatedAt         time.Time          `bson:"createdAt"                   json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"                   json:"updatedAt"`
}

// ApplyDefaults fills the status fields an order starts with.
func (o *Order) ApplyDefaults() {
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	if o.Status == "" {
		o.Status = StatusProcessing
	}
}
