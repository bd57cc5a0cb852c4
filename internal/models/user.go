package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility levels applied independently to profile, friend list and posts.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// PrivacySettings holds the three independent visibility scopes of a user.
type PrivacySettings struct {
	ProfileVisibility    string `json:"profileVisibility" bson:"profileVisibility"`
	FriendListVisibility string `json:"friendListVisibility" bson:"friendListVisibility"`
	PostVisibility       string `json:"postVisibility" bson:"postVisibility"`
}

// DefaultPrivacySettings mirrors the schema defaults: public profile,
// friends-only friend list and posts.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ProfileVisibility:    VisibilityPublic,
		FriendListVisibility: VisibilityFriends,
		PostVisibility:       VisibilityFriends,
	}
}

// User represents a registered account stored in MongoDB.
type User struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string               `json:"name" bson:"name"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"-" bson:"password,omitempty"` // bcrypt hash, empty for OAuth-only accounts
	Avatar       string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CoverPhoto   string               `json:"coverPhoto,omitempty" bson:"coverPhoto,omitempty"`
	Bio          string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Location     string               `json:"location,omitempty" bson:"location,omitempty"`
	Website      string               `json:"website,omitempty" bson:"website,omitempty"`
	Work         string               `json:"work,omitempty" bson:"work,omitempty"`
	Education    string               `json:"education,omitempty" bson:"education,omitempty"`
	DateOfBirth  *time.Time           `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Gender       string               `json:"gender,omitempty" bson:"gender,omitempty"`
	Friends      []primitive.ObjectID `json:"friends" bson:"friends"`
	BlockedUsers []primitive.ObjectID `json:"blockedUsers,omitempty" bson:"blockedUsers"`
	Privacy      PrivacySettings      `json:"privacy" bson:"privacy"`
	IsOnline     bool                 `json:"isOnline" bson:"isOnline"`
	LastSeen     time.Time            `json:"lastSeen" bson:"lastSeen"`
	IsVerified   bool                 `json:"isVerified" bson:"isVerified"`
	IsActive     bool                 `json:"isActive" bson:"isActive"`
	FirebaseUID  string               `json:"-" bson:"firebaseUid,omitempty"` // set when the account came in via Firebase OAuth
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsFriend reports whether the given user id is in the friend set.
func (u *User) IsFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// HasBlocked reports whether the given user id is in the blocked set.
func (u *User) HasBlocked(id primitive.ObjectID) bool {
	for _, b := range u.BlockedUsers {
		if b == id {
			return true
		}
	}
	return false
}

// PublicProfile is the trimmed user shape embedded in lists and lookups.
type PublicProfile struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Avatar   string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio      string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Location string             `json:"location,omitempty" bson:"location,omitempty"`
	IsOnline bool               `json:"isOnline" bson:"isOnline"`
	LastSeen time.Time          `json:"lastSeen" bson:"lastSeen"`
}

// Profile converts a full user document to its public shape.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Location: u.Location,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for local sign-in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest defines the request body for password rotation
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest defines the request body for PATCH /users/me
type UpdateProfileRequest struct {
	Name        string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Avatar      string          `json:"avatar,omitempty" validate:"omitempty,url"`
	CoverPhoto  string          `json:"coverPhoto,omitempty" validate:"omitempty,url"`
	Bio         string          `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location    string          `json:"location,omitempty"`
	Website     string          `json:"website,omitempty" validate:"omitempty,url"`
	Work        string          `json:"work,omitempty"`
	Education   string          `json:"education,omitempty"`
	DateOfBirth *time.Time      `json:"dateOfBirth,omitempty"`
	Gender      string          `json:"gender,omitempty" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Privacy     *PrivacyRequest `json:"privacy,omitempty"`
}

// PrivacyRequest updates any subset of the three visibility scopes
type PrivacyRequest struct {
	ProfileVisibility    string `json:"profileVisibility,omitempty" validate:"omitempty,oneof=public friends private"`
	FriendListVisibility string `json:"friendListVisibility,omitempty" validate:"omitempty,oneof=public friends private"`
	PostVisibility       string `json:"postVisibility,omitempty" validate:"omitempty,oneof=public friends private"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
