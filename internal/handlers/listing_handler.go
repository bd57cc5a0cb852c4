package handlers

import (
	"errors"
	"net/http"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingHandler handles HTTP requests for the marketplace
type ListingHandler struct {
	listingRepository repositories.ListingRepository
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingRepo repositories.ListingRepository) *ListingHandler {
	return &ListingHandler{listingRepository: listingRepo}
}

// RegisterListingRoutes registers marketplace routes
func (h *ListingHandler) RegisterListingRoutes(g *echo.Group) {
	g.POST("/listings", h.CreateListing)
	g.GET("/listings", h.ListListings)
	g.GET("/listings/:id", h.GetListing)
	g.PATCH("/listings/:id", h.UpdateListing)
	g.DELETE("/listings/:id", h.DeleteListing)
	g.POST("/listings/:id/sold", h.MarkSold)
}

// CreateListing creates a listing sold by the caller.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req models.CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	listing := &models.Listing{
		Seller:      middleware.UserID(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Images:      req.Images,
		Location:    req.Location,
	}
	if err := h.listingRepository.CreateListing(c.Request().Context(), listing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, listing)
}

// ListListings returns a page of listings, optionally filtered by category
// and status. Newest first. Sold listings are hidden unless status is set
// explicitly; status=all returns every listing.
func (h *ListingHandler) ListListings(c echo.Context) error {
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	status := c.QueryParam("status")
	switch status {
	case "":
		status = models.ListingAvailable
	case "all":
		status = ""
	}

	skip := (page - 1) * limit
	listings, total, err := h.listingRepository.ListListings(c.Request().Context(),
		c.QueryParam("category"), status, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"listings":   listings,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetListing returns one listing by id.
func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.loadListing(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) loadListing(c echo.Context) (*models.Listing, error) {
	listingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID format")
	}
	listing, err := h.listingRepository.GetListingByID(c.Request().Context(), listingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return listing, nil
}

// UpdateListing edits a listing. Seller only; sold listings are frozen.
func (h *ListingHandler) UpdateListing(c echo.Context) error {
	listing, err := h.loadListing(c)
	if err != nil {
		return err
	}
	if listing.Seller != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the seller can edit this listing")
	}
	if listing.Status == models.ListingSold {
		return echo.NewHTTPError(http.StatusConflict, "Sold listings cannot be edited")
	}

	var req models.UpdateListingRequest
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
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if req.Images != nil {
		fields["images"] = req.Images
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	ctx := c.Request().Context()
	if err := h.listingRepository.UpdateListing(ctx, listing.ID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	listing, err = h.listingRepository.GetListingByID(ctx, listing.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, listing)
}

// DeleteListing removes a listing. Seller only.
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	listing, err := h.loadListing(c)
	if err != nil {
		return err
	}
	if listing.Seller != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the seller can delete this listing")
	}

	if err := h.listingRepository.DeleteListing(c.Request().Context(), listing.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Listing deleted"})
}

// MarkSold flips an available listing to sold, exactly once.
func (h *ListingHandler) MarkSold(c echo.Context) error {
	listing, err := h.loadListing(c)
	if err != nil {
		return err
	}
	if listing.Seller != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the seller can mark this listing sold")
	}

	ctx := c.Request().Context()
	if err := h.listingRepository.MarkSold(ctx, listing.ID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyHandled) {
			return echo.NewHTTPError(http.StatusConflict, "Listing is already sold")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	listing, err = h.listingRepository.GetListingByID(ctx, listing.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, listing)
}
