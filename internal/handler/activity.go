package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"checkspot/internal/repository"
	"checkspot/internal/validation"
)

// Calendar-date query parameters ("2025-06-01"). Interpreted in UTC, the
// zone all rows are stored in.
const dayFormat = "2006-01-02"

// Accepted layouts for client-supplied timestamps, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// defaultWindowDays is how far ahead the global activity listing looks when
// the caller gives no range: today through 14 days ahead.
const defaultWindowDays = 14

// ActivityHandler serves activity scheduling queries and creation.
type ActivityHandler struct {
	Activities *repository.ActivityRepo
	Venues     *repository.VenueRepo
}

func NewActivityHandler(a *repository.ActivityRepo, v *repository.VenueRepo) *ActivityHandler {
	return &ActivityHandler{Activities: a, Venues: v}
}

type createActivityReq struct {
	VenueID     uint64  `json:"venue_id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     *string `json:"end_time"`
	Capacity    *uint32 `json:"capacity" validate:"omitempty,gte=1"`
}

// List returns activities whose start time falls inside the requested
// calendar-date range [?from, ?to], both bounds inclusive for the whole day,
// joined with venue summaries and ordered by start time. Missing bounds
// default to today and today+14d respectively.
func (h *ActivityHandler) List(c echo.Context) error {
	today := startOfToday()

	from := today
	if s := c.QueryParam("from"); s != "" {
		d, err := time.ParseInLocation(dayFormat, s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("from", "The from field must be a valid date."))
		}
		from = d
	}

	until := from.AddDate(0, 0, defaultWindowDays+1) // exclusive upper bound
	if s := c.QueryParam("to"); s != "" {
		d, err := time.ParseInLocation(dayFormat, s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("to", "The to field must be a valid date."))
		}
		until = d.AddDate(0, 0, 1)
	}

	items, err := h.Activities.ListBetween(c.Request().Context(), from, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, items)
}

// ByVenue returns one venue's activities. With ?date= the listing covers
// exactly that calendar day; without it, everything upcoming from the start
// of today.
func (h *ActivityHandler) ByVenue(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx := c.Request().Context()
	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	var items []repository.Activity
	if s := c.QueryParam("date"); s != "" {
		day, err := time.ParseInLocation(dayFormat, s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("date", "The date field must be a valid date."))
		}
		items, err = h.Activities.ListByVenueBetween(ctx, venueID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
	} else {
		items, err = h.Activities.ListByVenueUpcoming(ctx, venueID, startOfToday())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
	}
	return c.JSON(http.StatusOK, items)
}

// Create validates and inserts a new activity, returning it joined with its
// venue summary. The venue must exist; a dangling venue_id is a validation
// failure, not a 404, because the id arrives in the body rather than the
// path.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req createActivityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validation.NewErrorResponse(err))
	}

	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			validation.FieldError("start_time", "The start time field must be a valid date."))
	}
	var end *time.Time
	if req.EndTime != nil && *req.EndTime != "" {
		t, err := parseTimestamp(*req.EndTime)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("end_time", "The end time field must be a valid date."))
		}
		if t.Before(start) {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("end_time", "The end time must be a date after or equal to start time."))
		}
		end = &t
	}

	ctx := c.Request().Context()
	ok, err := h.Venues.Exists(ctx, req.VenueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity,
			validation.FieldError("venue_id", "The selected venue id is invalid."))
	}

	a := repository.Activity{
		VenueID:     req.VenueID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		Capacity:    req.Capacity, // nil = unlimited
	}
	if err := h.Activities.Create(ctx, &a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create activity failed"})
	}

	created, err := h.Activities.GetWithVenue(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load activity failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// startOfToday returns 00:00:00 UTC of the current day.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseTimestamp parses a client-supplied timestamp, trying the accepted
// ISO-8601 layouts in order. Times without an offset are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
