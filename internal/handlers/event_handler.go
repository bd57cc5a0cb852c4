package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventHandler handles HTTP requests related to events
type EventHandler struct {
	eventRepository repositories.EventRepository
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventRepo repositories.EventRepository) *EventHandler {
	return &EventHandler{eventRepository: eventRepo}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("/events", h.CreateEvent)
	g.GET("/events", h.ListEvents)
	g.GET("/events/:id", h.GetEvent)
	g.PATCH("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.POST("/events/:id/rsvp", h.RSVP)
	g.DELETE("/events/:id/rsvp", h.ClearRSVP)
}

// CreateEvent creates an event organized by the caller. The date must be in
// the future.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Date.After(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Event date must be in the future")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		CoverPhoto:  req.CoverPhoto,
		Organizer:   middleware.UserID(c),
	}
	if err := h.eventRepository.CreateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, event)
}

// ListEvents returns upcoming events, soonest first.
func (h *EventHandler) ListEvents(c echo.Context) error {
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	skip := (page - 1) * limit
	events, total, err := h.eventRepository.ListUpcoming(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events":     events,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetEvent returns one event by id.
func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.loadEvent(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) loadEvent(c echo.Context) (*models.Event, error) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID format")
	}
	event, err := h.eventRepository.GetEventByID(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return event, nil
}

// UpdateEvent edits an event. Organizer only.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	event, err := h.loadEvent(c)
	if err != nil {
		return err
	}
	if event.Organizer != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the organizer can edit this event")
	}

	var req models.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := bson.M{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.Date != nil {
		if !req.Date.After(time.Now()) {
			return echo.NewHTTPError(http.StatusBadRequest, "Event date must be in the future")
		}
		fields["date"] = *req.Date
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.CoverPhoto != "" {
		fields["coverPhoto"] = req.CoverPhoto
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	ctx := c.Request().Context()
	if err := h.eventRepository.UpdateEvent(ctx, event.ID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	event, err = h.eventRepository.GetEventByID(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event. Organizer only.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	event, err := h.loadEvent(c)
	if err != nil {
		return err
	}
	if event.Organizer != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the organizer can delete this event")
	}

	if err := h.eventRepository.DeleteEvent(c.Request().Context(), event.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted"})
}

// RSVP records the caller as going or interested. Switching status moves them
// between the two sets.
func (h *EventHandler) RSVP(c echo.Context) error {
	event, err := h.loadEvent(c)
	if err != nil {
		return err
	}

	var req models.RSVPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.eventRepository.SetRSVP(ctx, event.ID, middleware.UserID(c), req.Status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	event, err = h.eventRepository.GetEventByID(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, event)
}

// ClearRSVP removes the caller from both RSVP sets.
func (h *EventHandler) ClearRSVP(c echo.Context) error {
	event, err := h.loadEvent(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.eventRepository.ClearRSVP(ctx, event.ID, middleware.UserID(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	event, err = h.eventRepository.GetEventByID(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, event)
}
