package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post, stored in MongoDB.
// Replies nest at most one level via ParentComment.
type Comment struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Author        primitive.ObjectID  `json:"author" bson:"author"`
	Post          primitive.ObjectID  `json:"post" bson:"post"`
	Content       string              `json:"content" bson:"content"`
	Image         string              `json:"image,omitempty" bson:"image,omitempty"`
	ParentComment *primitive.ObjectID `json:"parentComment,omitempty" bson:"parentComment,omitempty"`
	Reactions     ReactionCounts      `json:"reactions" bson:"reactions"`
	ReactedUsers  []ReactedUser       `json:"reactedUsers" bson:"reactedUsers"`
	RepliesCount  int                 `json:"repliesCount" bson:"repliesCount"`
	IsEdited      bool                `json:"isEdited" bson:"isEdited"`
	EditedAt      *time.Time          `json:"editedAt,omitempty" bson:"editedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// UserReaction returns the reaction type the given user attached, if any.
func (c *Comment) UserReaction(userID primitive.ObjectID) (string, bool) {
	for _, r := range c.ReactedUsers {
		if r.User == userID {
			return r.ReactionType, true
		}
	}
	return "", false
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content       string `json:"content" validate:"required,min=1,max=1000"`
	Image         string `json:"image,omitempty" validate:"omitempty,url"`
	ParentComment string `json:"parentComment,omitempty"`
}

// UpdateCommentRequest defines the request body for editing an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
