package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group kinds and privacy.
const (
	GroupTypeGroup = "group"
	GroupTypePage  = "page"

	GroupPrivacyPublic  = "public"
	GroupPrivacyPrivate = "private"
)

// Member roles inside a group.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// GroupMember is one entry of the member list.
type GroupMember struct {
	User     primitive.ObjectID `json:"user" bson:"user"`
	JoinedAt time.Time          `json:"joinedAt" bson:"joinedAt"`
	Role     string             `json:"role" bson:"role"`
}

// JoinRequest is a pending membership request on a private group.
type JoinRequest struct {
	User        primitive.ObjectID `json:"user" bson:"user"`
	RequestedAt time.Time          `json:"requestedAt" bson:"requestedAt"`
	Message     string             `json:"message,omitempty" bson:"message,omitempty"`
}

// Group represents a group or page stored in MongoDB.
type Group struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Description     string               `json:"description" bson:"description"`
	Type            string               `json:"type" bson:"type"`
	Category        string               `json:"category" bson:"category"`
	Privacy         string               `json:"privacy" bson:"privacy"`
	Avatar          string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CoverPhoto      string               `json:"coverPhoto,omitempty" bson:"coverPhoto,omitempty"`
	Admin           primitive.ObjectID   `json:"admin" bson:"admin"`
	Moderators      []primitive.ObjectID `json:"moderators" bson:"moderators"`
	Members         []GroupMember        `json:"members" bson:"members"`
	PendingRequests []JoinRequest        `json:"pendingRequests" bson:"pendingRequests"`
	Rules           []string             `json:"rules,omitempty" bson:"rules,omitempty"`
	Tags            []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Location        string               `json:"location,omitempty" bson:"location,omitempty"`
	Website         string               `json:"website,omitempty" bson:"website,omitempty"`
	IsActive        bool                 `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updatedAt"`

	// Derived counts, filled in by the repository before responses go out.
	MembersCount         int `json:"membersCount" bson:"-"`
	PendingRequestsCount int `json:"pendingRequestsCount" bson:"-"`
}

// IsMember reports whether the user appears in the member list.
func (g *Group) IsMember(userID primitive.ObjectID) bool {
	for _, m := range g.Members {
		if m.User == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is the group admin.
func (g *Group) IsAdmin(userID primitive.ObjectID) bool {
	return g.Admin == userID
}

// IsModerator reports whether the user is in the moderator set.
func (g *Group) IsModerator(userID primitive.ObjectID) bool {
	for _, m := range g.Moderators {
		if m == userID {
			return true
		}
	}
	return false
}

// CanManage reports whether the user may administer the group.
func (g *Group) CanManage(userID primitive.ObjectID) bool {
	return g.IsAdmin(userID) || g.IsModerator(userID)
}

// HasPendingRequest reports whether the user already asked to join.
func (g *Group) HasPendingRequest(userID primitive.ObjectID) bool {
	for _, r := range g.PendingRequests {
		if r.User == userID {
			return true
		}
	}
	return false
}

// FillCounts computes the derived member and pending-request counts.
func (g *Group) FillCounts() {
	g.MembersCount = len(g.Members)
	g.PendingRequestsCount = len(g.PendingRequests)
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"required,min=1,max=1000"`
	Type        string   `json:"type,omitempty" validate:"omitempty,oneof=group page"`
	Category    string   `json:"category" validate:"required"`
	Privacy     string   `json:"privacy,omitempty" validate:"omitempty,oneof=public private"`
	Avatar      string   `json:"avatar,omitempty" validate:"omitempty,url"`
	CoverPhoto  string   `json:"coverPhoto,omitempty" validate:"omitempty,url"`
	Rules       []string `json:"rules,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Location    string   `json:"location,omitempty"`
	Website     string   `json:"website,omitempty" validate:"omitempty,url"`
}

// UpdateGroupRequest defines the request body for editing group settings
type UpdateGroupRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description string   `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Category    string   `json:"category,omitempty"`
	Privacy     string   `json:"privacy,omitempty" validate:"omitempty,oneof=public private"`
	Avatar      string   `json:"avatar,omitempty" validate:"omitempty,url"`
	CoverPhoto  string   `json:"coverPhoto,omitempty" validate:"omitempty,url"`
	Rules       []string `json:"rules,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Location    string   `json:"location,omitempty"`
	Website     string   `json:"website,omitempty" validate:"omitempty,url"`
}

// JoinGroupRequest carries the optional message attached to a private-group join.
type JoinGroupRequest struct {
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}
