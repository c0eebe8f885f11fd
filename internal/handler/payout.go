package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"checkspot/internal/middleware"
	"checkspot/internal/repository"
)

// PayoutHandler serves settlement listings for venue owners. Payouts are
// financial data, so unlike the rest of the venue surface this read is
// restricted to the owning user.
type PayoutHandler struct {
	Payouts *repository.PayoutRepo
	Venues  *repository.VenueRepo
}

func NewPayoutHandler(p *repository.PayoutRepo, v *repository.VenueRepo) *PayoutHandler {
	return &PayoutHandler{Payouts: p, Venues: v}
}

// ListByVenue returns the venue's payouts, most recent period first. 403
// when the caller does not own the venue.
func (h *PayoutHandler) ListByVenue(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx := c.Request().Context()
	venue, err := h.Venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	uid := middleware.UserID(c)
	if venue.OwnerID == nil || *venue.OwnerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	items, err := h.Payouts.ListByVenue(ctx, venueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, items)
}
