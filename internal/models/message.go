package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message kinds.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message represents a direct message between two users, stored in MongoDB.
type Message struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Sender    primitive.ObjectID  `json:"sender" bson:"sender"`
	Receiver  primitive.ObjectID  `json:"receiver" bson:"receiver"`
	Content   string              `json:"content" bson:"content"`
	Type      string              `json:"type" bson:"type"`
	Image     string              `json:"image,omitempty" bson:"image,omitempty"`
	ReplyTo   *primitive.ObjectID `json:"replyTo,omitempty" bson:"replyTo,omitempty"`
	IsRead    bool                `json:"isRead" bson:"isRead"`
	ReadAt    *time.Time          `json:"readAt,omitempty" bson:"readAt,omitempty"`
	IsEdited  bool                `json:"isEdited" bson:"isEdited"`
	EditedAt  *time.Time          `json:"editedAt,omitempty" bson:"editedAt,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=text image"`
	Image   string `json:"image,omitempty" validate:"omitempty,url"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// Conversation summarises one chat partner in the conversation list.
type Conversation struct {
	Partner     PublicProfile `json:"partner" bson:"partner"`
	LastMessage Message       `json:"lastMessage" bson:"lastMessage"`
	UnreadCount int64         `json:"unreadCount" bson:"unreadCount"`
}
