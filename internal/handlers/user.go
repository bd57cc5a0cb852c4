package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository    repositories.UserRepository
	requestRepository repositories.FriendRequestRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, requestRepo repositories.FriendRequestRepository) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		requestRepository: requestRepo,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.PATCH("/users/me", h.UpdateMe)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetProfile)
	g.GET("/users/:id/friends", h.GetUserFriends)
	g.POST("/users/block/:id", h.BlockUser)
	g.POST("/users/unblock/:id", h.UnblockUser)
}

// UpdateMe applies a partial update to the caller's profile.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req models.UpdateProfileRequest
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
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}
	if req.CoverPhoto != "" {
		fields["coverPhoto"] = req.CoverPhoto
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Website != "" {
		fields["website"] = req.Website
	}
	if req.Work != "" {
		fields["work"] = req.Work
	}
	if req.Education != "" {
		fields["education"] = req.Education
	}
	if req.DateOfBirth != nil {
		fields["dateOfBirth"] = *req.DateOfBirth
	}
	if req.Gender != "" {
		fields["gender"] = req.Gender
	}
	if req.Privacy != nil {
		if req.Privacy.ProfileVisibility != "" {
			fields["privacy.profileVisibility"] = req.Privacy.ProfileVisibility
		}
		if req.Privacy.FriendListVisibility != "" {
			fields["privacy.friendListVisibility"] = req.Privacy.FriendListVisibility
		}
		if req.Privacy.PostVisibility != "" {
			fields["privacy.postVisibility"] = req.Privacy.PostVisibility
		}
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	if err := h.userRepository.UpdateUser(ctx, userID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile returns a user profile, enforcing the profile visibility scope.
func (h *UserHandler) GetProfile(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}

	ctx := c.Request().Context()
	viewerID := middleware.UserID(c)
	user, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if viewerID != targetID {
		if user.HasBlocked(viewerID) {
			return echo.NewHTTPError(http.StatusForbidden, "You cannot view this profile")
		}
		switch user.Privacy.ProfileVisibility {
		case models.VisibilityPrivate:
			return echo.NewHTTPError(http.StatusForbidden, "This profile is private")
		case models.VisibilityFriends:
			if !user.IsFriend(viewerID) {
				return echo.NewHTTPError(http.StatusForbidden, "This profile is visible to friends only")
			}
		}
	}

	return c.JSON(http.StatusOK, user)
}

// SearchUsers matches users by name or bio.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	term := c.QueryParam("searchTerm")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "searchTerm query parameter is required")
	}
	limit := queryInt64(c, "limit", 10)

	profiles, err := h.userRepository.SearchUsers(c.Request().Context(), term, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetUserFriends returns a user's friend list, enforcing friend-list visibility.
func (h *UserHandler) GetUserFriends(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	limit := queryInt64(c, "limit", 20)

	ctx := c.Request().Context()
	viewerID := middleware.UserID(c)
	user, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if viewerID != targetID {
		switch user.Privacy.FriendListVisibility {
		case models.VisibilityPrivate:
			return echo.NewHTTPError(http.StatusForbidden, "This friend list is private")
		case models.VisibilityFriends:
			if !user.IsFriend(viewerID) {
				return echo.NewHTTPError(http.StatusForbidden, "This friend list is visible to friends only")
			}
		}
	}

	friends := user.Friends
	if int64(len(friends)) > limit {
		friends = friends[:limit]
	}
	profiles, err := h.userRepository.GetProfiles(ctx, friends)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profiles)
}

// BlockUser blocks a user; any friendship and pending requests are severed.
func (h *UserHandler) BlockUser(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	viewerID := middleware.UserID(c)
	if targetID == viewerID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot block yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.BlockUser(ctx, viewerID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.requestRepository.DeleteBetween(ctx, viewerID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User blocked"})
}

// UnblockUser removes a user from the caller's blocked set.
func (h *UserHandler) UnblockUser(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}

	if err := h.userRepository.UnblockUser(c.Request().Context(), middleware.UserID(c), targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unblocked"})
}

// queryInt64 parses an integer query parameter with a default.
func queryInt64(c echo.Context, name string, def int64) int64 {
	v, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
