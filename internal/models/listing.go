package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Marketplace listing states.
const (
	ListingAvailable = "available"
	ListingSold      = "sold"
)

// Listing represents a marketplace listing stored in MongoDB.
type Listing struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Seller      primitive.ObjectID `json:"seller" bson:"seller"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	Images      []string           `json:"images,omitempty" bson:"images,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	Status      string             `json:"status" bson:"status"`
	SoldAt      *time.Time         `json:"soldAt,omitempty" bson:"soldAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateListingRequest defines the request body for creating a listing
type CreateListingRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"required,min=1,max=2000"`
	Price       float64  `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Location    string   `json:"location,omitempty"`
}

// UpdateListingRequest defines the request body for editing a listing
type UpdateListingRequest struct {
	Title       string   `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Location    string   `json:"location,omitempty"`
}
