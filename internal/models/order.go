package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultOrderStatus is assigned to every new order.
const DefaultOrderStatus = "Pending"

// OrderItem is a single line of an order. Product is a weak reference:
// nothing guarantees the referenced product still exists.
type OrderItem struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
}

// Order is a customer order as stored in the orders collection.
type Order struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CustomerName string             `json:"customerName" bson:"customerName"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	Address      string             `json:"address" bson:"address"`
	Products     []OrderItem        `json:"products" bson:"products"`
	TotalAmount  float64            `json:"totalAmount" bson:"totalAmount"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PopulatedOrderItem is an order line with its product reference resolved.
// Product is nil when the reference points at a product that no longer exists.
type PopulatedOrderItem struct {
	ID       primitive.ObjectID `json:"_id"`
	Product  *Product           `json:"product"`
	Quantity int                `json:"quantity"`
}

// PopulatedOrder is the read shape of an order returned by list and get.
type PopulatedOrder struct {
	ID           primitive.ObjectID   `json:"_id"`
	CustomerName string               `json:"customerName"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone"`
	Address      string               `json:"address"`
	Products     []PopulatedOrderItem `json:"products"`
	TotalAmount  float64              `json:"totalAmount"`
	Status       string               `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// OrderItemInput is a line item as sent by clients; Product is an ObjectID hex string.
type OrderItemInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

// OrderInput is the request body of an order create. Status is not accepted here.
type OrderInput struct {
	CustomerName string           `json:"customerName" validate:"required"`
	Email        string           `json:"email" validate:"required"`
	Phone        string           `json:"phone" validate:"required"`
	Address      string           `json:"address" validate:"required"`
	Products     []OrderItemInput `json:"products" validate:"dive"`
	TotalAmount  *float64         `json:"totalAmount" validate:"required"`
}

// OrderUpdateRequest is the request body of an order update. Nil fields are left untouched.
type OrderUpdateRequest struct {
	CustomerName *string           `json:"customerName"`
	Email        *string           `json:"email"`
	Phone        *string           `json:"phone"`
	Address      *string           `json:"address"`
	Products     *[]OrderItemInput `json:"products"`
	TotalAmount  *float64          `json:"totalAmount"`
	Status       *string           `json:"status"`
}

// OrderPatch is a validated order update ready for storage.
// Products replaces the whole line-item array when non-nil.
type OrderPatch struct {
	CustomerName *string
	Email        *string
	Phone        *string
	Address      *string
	Products     []OrderItem
	TotalAmount  *float64
	Status       *string
	UpdatedAt    time.Time
}

// Fields returns the $set document for the patch, always including updatedAt.
func (p OrderPatch) Fields() bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.CustomerName != nil {
		set["customerName"] = *p.CustomerName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Products != nil {
		set["products"] = p.Products
	}
	if p.TotalAmount != nil {
		set["totalAmount"] = *p.TotalAmount
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return set
}

// Apply merges the patch into order.
func (p OrderPatch) Apply(order *Order) {
	if p.CustomerName != nil {
		order.CustomerName = *p.CustomerName
	}
	if p.Email != nil {
		order.Email = *p.Email
	}
	if p.Phone != nil {
		order.Phone = *p.Phone
	}
	if p.Address != nil {
		order.Address = *p.Address
	}
	if p.Products != nil {
		order.Products = make([]OrderItem, len(p.Products))
		copy(order.Products, p.Products)
	}
	if p.TotalAmount != nil {
		order.TotalAmount = *p.TotalAmount
	}
	if p.Status != nil {
		order.Status = *p.Status
	}
	order.UpdatedAt = p.UpdatedAt
}
