package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue entry stored in the products collection.
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Brand       string             `json:"brand" bson:"brand"`
	Category    string             `json:"category" bson:"category"`
	Stock       int                `json:"stock" bson:"stock"`
	Image       string             `json:"image" bson:"image"`
	Description string             `json:"description" bson:"description"`
}

// ProductInput is the request body of a product create.
// Price is a pointer so that an explicit 0 counts as present.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

// ProductPatch carries the fields of a product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
}

// Fields returns the $set document for the non-nil fields of the patch.
func (p ProductPatch) Fields() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Brand != nil {
		set["brand"] = *p.Brand
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	return set
}

// Apply merges the non-nil fields of the patch into product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
}
