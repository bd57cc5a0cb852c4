package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RSVP states for an event.
const (
	RSVPGoing      = "going"
	RSVPInterested = "interested"
)

// Event represents a scheduled event stored in MongoDB.
// A user sits in at most one of the Going/Interested sets.
type Event struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Date        time.Time            `json:"date" bson:"date"`
	Location    string               `json:"location" bson:"location"`
	CoverPhoto  string               `json:"coverPhoto,omitempty" bson:"coverPhoto,omitempty"`
	Organizer   primitive.ObjectID   `json:"organizer" bson:"organizer"`
	Going       []primitive.ObjectID `json:"going" bson:"going"`
	Interested  []primitive.ObjectID `json:"interested" bson:"interested"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CreateEventRequest defines the request body for creating an event
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"required,min=1,max=2000"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	CoverPhoto  string    `json:"coverPhoto,omitempty" validate:"omitempty,url"`
}

// UpdateEventRequest defines the request body for editing an event
type UpdateEventRequest struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description string     `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Date        *time.Time `json:"date,omitempty"`
	Location    string     `json:"location,omitempty"`
	CoverPhoto  string     `json:"coverPhoto,omitempty" validate:"omitempty,url"`
}

// RSVPRequest defines the request body for POST /events/:id/rsvp
type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=going interested"`
}
