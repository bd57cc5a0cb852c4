package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupHandler handles HTTP requests related to groups and pages
type GroupHandler struct {
	groupRepository repositories.GroupRepository
	postRepository  repositories.PostRepository
	notifier        *Notifier
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, postRepo repositories.PostRepository, notifier *Notifier) *GroupHandler {
	return &GroupHandler{
		groupRepository: groupRepo,
		postRepository:  postRepo,
		notifier:        notifier,
	}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups/create", h.CreateGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/groups/user", h.GetMyGroups)
	g.GET("/groups/suggestions", h.GetSuggestions)
	g.GET("/groups/:id", h.GetGroup)
	g.PATCH("/groups/:id", h.UpdateGroup)
	g.DELETE("/groups/:id", h.DeleteGroup)
	g.POST("/groups/:id/join", h.JoinGroup)
	g.POST("/groups/:id/leave", h.LeaveGroup)
	g.POST("/groups/:id/requests/:userId/approve", h.ApproveRequest)
	g.POST("/groups/:id/requests/:userId/reject", h.RejectRequest)
	g.GET("/groups/:id/posts", h.GetGroupPosts)
}

// CreateGroup creates a group with the caller as admin and first member.
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := middleware.UserID(c)
	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Privacy:     req.Privacy,
		Avatar:      req.Avatar,
		CoverPhoto:  req.CoverPhoto,
		Admin:       userID,
		Rules:       req.Rules,
		Tags:        req.Tags,
		Location:    req.Location,
		Website:     req.Website,
	}
	if group.Type == "" {
		group.Type = models.GroupTypeGroup
	}
	if group.Privacy == "" {
		group.Privacy = models.GroupPrivacyPublic
	}
	group.Members = []models.GroupMember{{User: userID, JoinedAt: time.Now(), Role: models.RoleAdmin}}

	if err := h.groupRepository.CreateGroup(c.Request().Context(), group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	group.FillCounts()
	return c.JSON(http.StatusCreated, group)
}

// ListGroups returns a page of active groups, optionally filtered by category
// or privacy.
func (h *GroupHandler) ListGroups(c echo.Context) error {
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	skip := (page - 1) * limit
	groups, total, err := h.groupRepository.ListGroups(c.Request().Context(),
		c.QueryParam("category"), c.QueryParam("privacy"), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"groups":     groups,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetGroup returns one group. Pending requests are only visible to managers.
func (h *GroupHandler) GetGroup(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}
	if !group.CanManage(middleware.UserID(c)) {
		group.PendingRequests = nil
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) loadGroup(c echo.Context) (*models.Group, error) {
	groupID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID format")
	}
	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return group, nil
}

// UpdateGroup edits group settings. Admin and moderators only.
func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}
	if !group.CanManage(middleware.UserID(c)) {
		return echo.NewHTTPError(http.StatusForbidden, "Only group managers can edit this group")
	}

	var req models.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := bson.M{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if req.Privacy != "" {
		fields["privacy"] = req.Privacy
	}
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}
	if req.CoverPhoto != "" {
		fields["coverPhoto"] = req.CoverPhoto
	}
	if req.Rules != nil {
		fields["rules"] = req.Rules
	}
	if req.Tags != nil {
		fields["tags"] = req.Tags
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Website != "" {
		fields["website"] = req.Website
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	ctx := c.Request().Context()
	if err := h.groupRepository.UpdateGroup(ctx, group.ID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	group, err = h.groupRepository.GetGroupByID(ctx, group.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, group)
}

// DeleteGroup deactivates a group. Admin only.
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}
	if !group.IsAdmin(middleware.UserID(c)) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the group admin can delete this group")
	}

	if err := h.groupRepository.DeleteGroup(c.Request().Context(), group.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Group deleted"})
}

// JoinGroup joins a public group immediately; on a private group it files a
// pending request for the managers to approve.
func (h *GroupHandler) JoinGroup(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}

	userID := middleware.UserID(c)
	if group.IsMember(userID) {
		return echo.NewHTTPError(http.StatusConflict, "You are already a member")
	}
	if group.HasPendingRequest(userID) {
		return echo.NewHTTPError(http.StatusConflict, "Your join request is already pending")
	}

	var req models.JoinGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if group.Privacy == models.GroupPrivacyPrivate {
		join := models.JoinRequest{User: userID, RequestedAt: time.Now(), Message: req.Message}
		if err := h.groupRepository.AddPendingRequest(ctx, group.ID, join); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusAccepted, echo.Map{"message": "Join request sent"})
	}

	member := models.GroupMember{User: userID, JoinedAt: time.Now(), Role: models.RoleMember}
	if err := h.groupRepository.AddMember(ctx, group.ID, member); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Joined group"})
}

// LeaveGroup removes the caller from the member list. The admin cannot leave
// their own group.
func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}

	userID := middleware.UserID(c)
	if group.IsAdmin(userID) {
		return echo.NewHTTPError(http.StatusBadRequest, "The admin cannot leave the group; delete it instead")
	}
	if !group.IsMember(userID) {
		return echo.NewHTTPError(http.StatusNotFound, "You are not a member of this group")
	}

	if err := h.groupRepository.RemoveMember(c.Request().Context(), group.ID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Left group"})
}

// ApproveRequest admits a pending requester as a member. Managers only.
func (h *GroupHandler) ApproveRequest(c echo.Context) error {
	group, requesterID, err := h.loadPendingRequest(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.groupRepository.RemovePendingRequest(ctx, group.ID, requesterID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	member := models.GroupMember{User: requesterID, JoinedAt: time.Now(), Role: models.RoleMember}
	if err := h.groupRepository.AddMember(ctx, group.ID, member); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(&models.Notification{
		Type:         models.NotificationGroupInvite,
		SenderID:     middleware.UserID(c).Hex(),
		RecipientID:  requesterID.Hex(),
		Message:      fmt.Sprintf("Your request to join %s was approved", group.Name),
		RelatedGroup: group.ID.Hex(),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Request approved"})
}

// RejectRequest declines a pending join request. Managers only.
func (h *GroupHandler) RejectRequest(c echo.Context) error {
	group, requesterID, err := h.loadPendingRequest(c)
	if err != nil {
		return err
	}

	if err := h.groupRepository.RemovePendingRequest(c.Request().Context(), group.ID, requesterID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Request rejected"})
}

// loadPendingRequest resolves the group and requester of an approve/reject
// call and checks the caller may manage the group.
func (h *GroupHandler) loadPendingRequest(c echo.Context) (*models.Group, primitive.ObjectID, error) {
	group, err := h.loadGroup(c)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if !group.CanManage(middleware.UserID(c)) {
		return nil, primitive.NilObjectID, echo.NewHTTPError(http.StatusForbidden, "Only group managers can handle join requests")
	}

	requesterID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return nil, primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	if !group.HasPendingRequest(requesterID) {
		return nil, primitive.NilObjectID, echo.NewHTTPError(http.StatusNotFound, "Join request not found")
	}
	return group, requesterID, nil
}

// GetGroupPosts returns the latest posts in a group. Private groups require
// membership.
func (h *GroupHandler) GetGroupPosts(c echo.Context) error {
	group, err := h.loadGroup(c)
	if err != nil {
		return err
	}
	if group.Privacy == models.GroupPrivacyPrivate && !group.IsMember(middleware.UserID(c)) {
		return echo.NewHTTPError(http.StatusForbidden, "Only members can view this group's posts")
	}

	limit := queryInt64(c, "limit", 20)
	posts, err := h.postRepository.GetGroupPosts(c.Request().Context(), group.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

// GetMyGroups lists the groups the caller belongs to.
func (h *GroupHandler) GetMyGroups(c echo.Context) error {
	limit := queryInt64(c, "limit", 20)
	groups, err := h.groupRepository.GetUserGroups(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

// GetSuggestions lists public groups the caller has not joined.
func (h *GroupHandler) GetSuggestions(c echo.Context) error {
	limit := queryInt64(c, "limit", 10)
	groups, err := h.groupRepository.SuggestGroups(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}
