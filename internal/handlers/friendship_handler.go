package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	requestRepository repositories.FriendRequestRepository
	userRepository    repositories.UserRepository
	notifier          *Notifier
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(requestRepo repositories.FriendRequestRepository, userRepo repositories.UserRepository, notifier *Notifier) *FriendshipHandler {
	return &FriendshipHandler{
		requestRepository: requestRepo,
		userRepository:    userRepo,
		notifier:          notifier,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/request/:id", h.SendFriendRequest)
	g.POST("/friends/accept/:requestId", h.AcceptFriendRequest)
	g.POST("/friends/reject/:requestId", h.RejectFriendRequest)
	g.DELETE("/friends/remove/:id", h.Unfriend)
	g.GET("/friends/list", h.GetFriends)
	g.GET("/friends/requests", h.GetPendingRequests)
	g.GET("/friends/requests/sent", h.GetSentRequests)
	g.GET("/friends/suggestions", h.GetSuggestions)
}

// SendFriendRequest creates a pending request toward the user in the path.
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	receiverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	senderID := middleware.UserID(c)
	if receiverID == senderID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot send a friend request to yourself")
	}

	var req models.SendFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	sender, err := h.userRepository.GetUserByID(ctx, senderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	receiver, err := h.userRepository.GetUserByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if sender.IsFriend(receiverID) {
		return echo.NewHTTPError(http.StatusConflict, "You are already friends")
	}
	if receiver.HasBlocked(senderID) || sender.HasBlocked(receiverID) {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot send a friend request to this user")
	}
	// a pending request from the other side must be answered, not mirrored
	if _, err := h.requestRepository.FindPendingBetween(ctx, senderID, receiverID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "A friend request between you is already pending")
	} else if !errors.Is(err, repositories.ErrFriendRequestNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	request := &models.FriendRequest{
		Sender:   senderID,
		Receiver: receiverID,
		Message:  req.Message,
	}
	if err := h.requestRepository.CreateRequest(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "Friend request already sent")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Notify(&models.Notification{
		Type:        models.NotificationFriendRequest,
		SenderID:    senderID.Hex(),
		RecipientID: receiverID.Hex(),
		Message:     fmt.Sprintf("%s sent you a friend request", sender.Name),
	})

	return c.JSON(http.StatusCreated, request)
}

// AcceptFriendRequest accepts a pending request addressed to the caller and
// links both users as friends.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	request, err := h.respond(c, models.FriendRequestAccepted)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.userRepository.AddFriends(ctx, request.Sender, request.Receiver); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	receiver, err := h.userRepository.GetUserByID(ctx, request.Receiver)
	if err == nil {
		h.notifier.Notify(&models.Notification{
			Type:        models.NotificationFriendAccept,
			SenderID:    request.Receiver.Hex(),
			RecipientID: request.Sender.Hex(),
			Message:     fmt.Sprintf("%s accepted your friend request", receiver.Name),
		})
	}

	return c.JSON(http.StatusOK, request)
}

// RejectFriendRequest rejects a pending request addressed to the caller.
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	request, err := h.respond(c, models.FriendRequestRejected)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, request)
}

// respond performs the shared accept/reject transition: only the receiver may
// answer, and only while the request is still pending.
func (h *FriendshipHandler) respond(c echo.Context, status string) (*models.FriendRequest, error) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID format")
	}

	ctx := c.Request().Context()
	request, err := h.requestRepository.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if request.Receiver != middleware.UserID(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Only the receiver can respond to this request")
	}

	request, err = h.requestRepository.Respond(ctx, requestID, status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyHandled):
			return nil, echo.NewHTTPError(http.StatusConflict, "Friend request already handled")
		case errors.Is(err, repositories.ErrFriendRequestNotFound):
			return nil, echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
		default:
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return request, nil
}

// Unfriend removes the friendship in both directions and clears the request
// documents so a later request is possible again.
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	friendID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !user.IsFriend(friendID) {
		return echo.NewHTTPError(http.StatusNotFound, "You are not friends with this user")
	}

	if err := h.userRepository.RemoveFriends(ctx, userID, friendID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.requestRepository.DeleteBetween(ctx, userID, friendID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend removed"})
}

// GetFriends returns the caller's friends as public profiles.
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profiles, err := h.userRepository.GetProfiles(ctx, user.Friends)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if term := strings.ToLower(c.QueryParam("searchTerm")); term != "" {
		matched := make([]models.PublicProfile, 0, len(profiles))
		for _, p := range profiles {
			if strings.Contains(strings.ToLower(p.Name), term) {
				matched = append(matched, p)
			}
		}
		profiles = matched
	}
	if limit := queryInt64(c, "limit", 50); int64(len(profiles)) > limit {
		profiles = profiles[:limit]
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetPendingRequests returns incoming pending requests with sender profiles.
func (h *FriendshipHandler) GetPendingRequests(c echo.Context) error {
	limit := queryInt64(c, "limit", 20)
	ctx := c.Request().Context()

	requests, err := h.requestRepository.GetPendingForReceiver(ctx, middleware.UserID(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.withCounterparts(c, requests, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// GetSentRequests returns outgoing pending requests with receiver profiles.
func (h *FriendshipHandler) GetSentRequests(c echo.Context) error {
	limit := queryInt64(c, "limit", 20)
	ctx := c.Request().Context()

	requests, err := h.requestRepository.GetPendingBySender(ctx, middleware.UserID(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.withCounterparts(c, requests, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// withCounterparts decorates requests with the other side's public profile.
func (h *FriendshipHandler) withCounterparts(c echo.Context, requests []models.FriendRequest, sent bool) ([]models.FriendRequestView, error) {
	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		if sent {
			ids = append(ids, req.Receiver)
		} else {
			ids = append(ids, req.Sender)
		}
	}
	profiles, err := h.userRepository.GetProfiles(c.Request().Context(), ids)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	byID := make(map[primitive.ObjectID]models.PublicProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for _, req := range requests {
		id := req.Sender
		if sent {
			id = req.Receiver
		}
		views = append(views, models.FriendRequestView{FriendRequest: req, User: byID[id]})
	}
	return views, nil
}

// GetSuggestions returns people the caller may know: not already friends, not
// blocked either way, and with no request pending in either direction.
func (h *FriendshipHandler) GetSuggestions(c echo.Context) error {
	limit := queryInt64(c, "limit", 10)
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pending, err := h.requestRepository.PendingCounterparts(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	exclude := make([]primitive.ObjectID, 0, len(user.Friends)+len(user.BlockedUsers)+len(pending)+1)
	exclude = append(exclude, userID)
	exclude = append(exclude, user.Friends...)
	exclude = append(exclude, user.BlockedUsers...)
	exclude = append(exclude, pending...)

	profiles, err := h.userRepository.SuggestFriends(ctx, user, exclude, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profiles)
}
