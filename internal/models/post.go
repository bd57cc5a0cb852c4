package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post types.
const (
	PostTypeText   = "text"
	PostTypeImage  = "image"
	PostTypeShared = "shared"
)

// Reaction kinds, shared by posts and comments.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ReactionKinds lists the six allowed reaction types.
var ReactionKinds = []string{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

// IsValidReaction reports whether t is one of the six reaction kinds.
func IsValidReaction(t string) bool {
	for _, k := range ReactionKinds {
		if k == t {
			return true
		}
	}
	return false
}

// ReactionCounts is the fixed six-way tally kept on posts and comments.
type ReactionCounts struct {
	Like  int `json:"like" bson:"like"`
	Love  int `json:"love" bson:"love"`
	Haha  int `json:"haha" bson:"haha"`
	Wow   int `json:"wow" bson:"wow"`
	Sad   int `json:"sad" bson:"sad"`
	Angry int `json:"angry" bson:"angry"`
}

// Total returns the sum of the six per-type counters.
func (r ReactionCounts) Total() int {
	return r.Like + r.Love + r.Haha + r.Wow + r.Sad + r.Angry
}

// ReactedUser records which user reacted with which type.
type ReactedUser struct {
	User         primitive.ObjectID `json:"user" bson:"user"`
	ReactionType string             `json:"reactionType" bson:"reactionType"`
}

// Post represents a feed post stored in MongoDB.
type Post struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Author        primitive.ObjectID  `json:"author" bson:"author"`
	Content       string              `json:"content" bson:"content"`
	Images        []string            `json:"images,omitempty" bson:"images,omitempty"`
	Type          string              `json:"type" bson:"type"`
	Visibility    string              `json:"visibility" bson:"visibility"`
	Tags          []string            `json:"tags,omitempty" bson:"tags,omitempty"`
	Location      string              `json:"location,omitempty" bson:"location,omitempty"`
	Group         *primitive.ObjectID `json:"group,omitempty" bson:"group,omitempty"`
	SharedPost    *primitive.ObjectID `json:"sharedPost,omitempty" bson:"sharedPost,omitempty"`
	Reactions     ReactionCounts      `json:"reactions" bson:"reactions"`
	ReactedUsers  []ReactedUser       `json:"reactedUsers" bson:"reactedUsers"`
	CommentsCount int                 `json:"commentsCount" bson:"commentsCount"`
	SharesCount   int                 `json:"sharesCount" bson:"sharesCount"`
	IsEdited      bool                `json:"isEdited" bson:"isEdited"`
	EditedAt      *time.Time          `json:"editedAt,omitempty" bson:"editedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// UserReaction returns the reaction type the given user attached, if any.
func (p *Post) UserReaction(userID primitive.ObjectID) (string, bool) {
	for _, r := range p.ReactedUsers {
		if r.User == userID {
			return r.ReactionType, true
		}
	}
	return "", false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string   `json:"content" validate:"required,min=1,max=2000"`
	Images     []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=public friends private"`
	Tags       []string `json:"tags,omitempty"`
	Location   string   `json:"location,omitempty"`
	Group      string   `json:"group,omitempty"`
}

// UpdatePostRequest defines the request body for editing an existing post
type UpdatePostRequest struct {
	Content    string   `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	Images     []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=public friends private"`
	Tags       []string `json:"tags,omitempty"`
}

// ReactRequest defines the request body for reacting to a post or comment
type ReactRequest struct {
	Type string `json:"type" validate:"required,oneof=like love haha wow sad angry"`
}

// SharePostRequest defines the request body for sharing a post
type SharePostRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,max=2000"`
}
