package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/arafatr/linkup/backend/internal/ws"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageHandler handles HTTP requests related to direct messages
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	hub               *ws.Hub
	notifier          *Notifier
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository,
	hub *ws.Hub, notifier *Notifier) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		hub:               hub,
		notifier:          notifier,
	}
}

// RegisterMessageRoutes registers messaging-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/conversations", h.GetConversations)
	g.GET("/messages/unread-count", h.GetUnreadCount)
	g.POST("/messages/send/:id", h.SendMessage)
	g.GET("/messages/:id", h.GetConversation)
	g.PATCH("/messages/:id/read", h.MarkConversationRead)
}

// SendMessage sends a direct message to the user in the path and pushes it to
// their open connections.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	receiverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	senderID := middleware.UserID(c)
	if receiverID == senderID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot message yourself")
	}

	var req models.SendMessageRequest
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
	if receiver.HasBlocked(senderID) || sender.HasBlocked(receiverID) {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot message this user")
	}

	msg := &models.Message{
		Sender:   senderID,
		Receiver: receiverID,
		Content:  req.Content,
		Type:     req.Type,
		Image:    req.Image,
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if req.ReplyTo != "" {
		replyID, err := primitive.ObjectIDFromHex(req.ReplyTo)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid replyTo ID format")
		}
		msg.ReplyTo = &replyID
	}

	if err := h.messageRepository.CreateMessage(ctx, msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.hub.SendToUser(receiverID.Hex(), ws.EventNewMessage, msg)
	h.notifier.Notify(&models.Notification{
		Type:        models.NotificationMessage,
		SenderID:    senderID.Hex(),
		RecipientID: receiverID.Hex(),
		Message:     fmt.Sprintf("New message from %s", sender.Name),
	})

	return c.JSON(http.StatusCreated, msg)
}

// GetConversation returns one page of the chat with the user in the path, in
// chronological order.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	partnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 20)

	skip := (page - 1) * limit
	messages, total, err := h.messageRepository.GetConversation(c.Request().Context(), middleware.UserID(c), partnerID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"messages":   messages,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetConversations lists the caller's chats, most recent first, each with the
// partner profile, last message and unread count.
func (h *MessageHandler) GetConversations(c echo.Context) error {
	limit := queryInt64(c, "limit", 20)
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	partners, err := h.messageRepository.GetConversationPartners(ctx, userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	profiles, err := h.userRepository.GetProfiles(ctx, partners)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	byID := make(map[primitive.ObjectID]models.PublicProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	conversations := make([]models.Conversation, 0, len(partners))
	for _, partnerID := range partners {
		last, err := h.messageRepository.GetLastMessage(ctx, userID, partnerID)
		if err != nil {
			if errors.Is(err, repositories.ErrMessageNotFound) {
				continue
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		unread, err := h.messageRepository.CountUnread(ctx, partnerID, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		conversations = append(conversations, models.Conversation{
			Partner:     byID[partnerID],
			LastMessage: *last,
			UnreadCount: unread,
		})
	}

	return c.JSON(http.StatusOK, conversations)
}

// MarkConversationRead marks every unread message from the user in the path
// as read and reports how many were affected.
func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	partnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}

	marked, err := h.messageRepository.MarkConversationRead(c.Request().Context(), partnerID, middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": marked})
}

// GetUnreadCount returns the caller's total unread message count across all
// conversations.
func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	partners, err := h.messageRepository.GetConversationPartners(ctx, userID, 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var total int64
	for _, partnerID := range partners {
		unread, err := h.messageRepository.CountUnread(ctx, partnerID, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		total += unread
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": total})
}
