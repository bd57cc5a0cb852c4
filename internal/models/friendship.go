package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request lifecycle states.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest represents a friend request between two users, stored in
// MongoDB with a unique (sender, receiver) index.
type FriendRequest struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender      primitive.ObjectID `json:"sender" bson:"sender"`
	Receiver    primitive.ObjectID `json:"receiver" bson:"receiver"`
	Message     string             `json:"message,omitempty" bson:"message,omitempty"`
	Status      string             `json:"status" bson:"status"`
	RespondedAt *time.Time         `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SendFriendRequest defines the request body for sending a friend request
type SendFriendRequest struct {
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// FriendRequestView pairs a request with the counterpart's public profile
// (the sender for incoming requests, the receiver for sent ones).
type FriendRequestView struct {
	FriendRequest `bson:",inline"`
	User          PublicProfile `json:"user" bson:"user"`
}
