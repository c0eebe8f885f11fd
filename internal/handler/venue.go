package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"checkspot/internal/middleware"
	"checkspot/internal/repository"
	"checkspot/internal/validation"
)

// VenueHandler serves the venue directory: the public browse endpoints and
// the authenticated create.
type VenueHandler struct {
	Venues *repository.VenueRepo
}

func NewVenueHandler(v *repository.VenueRepo) *VenueHandler {
	return &VenueHandler{Venues: v}
}

type createVenueReq struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Address   string   `json:"address" validate:"required,max=255"`
	Type      *string  `json:"type" validate:"omitempty,max=100"`
	City      *string  `json:"city" validate:"omitempty,max=100"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// List returns all venues ordered by name, optionally filtered by the exact
// ?city= value. An unknown city yields an empty array, not an error.
func (h *VenueHandler) List(c echo.Context) error {
	venues, err := h.Venues.List(c.Request().Context(), c.QueryParam("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, venues)
}

// Cities returns the distinct city names venues are registered in,
// alphabetical, as a plain array of strings. Feeds the client's city picker.
func (h *VenueHandler) Cities(c echo.Context) error {
	cities, err := h.Venues.ListCities(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, cities)
}

// Create registers a new venue owned by the authenticated user.
func (h *VenueHandler) Create(c echo.Context) error {
	var req createVenueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validation.NewErrorResponse(err))
	}

	owner := middleware.UserID(c)
	v := repository.Venue{
		Name:      req.Name,
		Address:   req.Address,
		Type:      req.Type,
		City:      req.City,
		OwnerID:   &owner,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.Venues.Create(c.Request().Context(), &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create venue failed"})
	}
	return c.JSON(http.StatusCreated, v)
}
