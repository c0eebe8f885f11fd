package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"checkspot/internal/middleware"
	"checkspot/internal/queue"
	"checkspot/internal/repository"
	queue_publisher "checkspot/internal/service"
	"checkspot/internal/validation"
)

// CheckinHandler serves the append-only check-in ledger.
type CheckinHandler struct {
	Checkins *repository.CheckinRepo
	Venues   *repository.VenueRepo
	Log      *logrus.Entry
}

func NewCheckinHandler(ch *repository.CheckinRepo, v *repository.VenueRepo, log *logrus.Entry) *CheckinHandler {
	return &CheckinHandler{Checkins: ch, Venues: v, Log: log}
}

type createCheckinReq struct {
	VenueID uint64 `json:"venue_id" validate:"required"`
}

// Create appends a check-in for the authenticated user at the given venue.
// The acting user comes only from the session; any user_id in the body is
// ignored, so one caller can never record a visit on another's behalf. The
// ledger timestamp is the server clock, never client input.
func (h *CheckinHandler) Create(c echo.Context) error {
	var req createCheckinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validation.NewErrorResponse(err))
	}

	ctx := c.Request().Context()
	venue, err := h.Venues.GetByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusUnprocessableEntity,
				validation.FieldError("venue_id", "The selected venue id is invalid."))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	userID := middleware.UserID(c)
	checkin, err := h.Checkins.Create(ctx, userID, venue.ID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create check-in failed"})
	}

	// Best-effort event for downstream audit/loyalty consumers; the ledger
	// row is already durable, so a broker outage must not fail the request.
	ev := queue.CheckinRecordedEvent{
		CheckinID:  checkin.ID,
		UserID:     checkin.UserID,
		VenueID:    venue.ID,
		VenueName:  venue.Name,
		RecordedAt: checkin.Timestamp.Format(time.RFC3339),
	}
	if venue.City != nil {
		ev.VenueCity = *venue.City
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishCheckinRecorded(pubCtx, h.Log, ev)
	}()

	return c.JSON(http.StatusCreated, checkin)
}

// ListMine returns the authenticated user's check-in history, most recent
// first, each joined with the visited venue.
func (h *CheckinHandler) ListMine(c echo.Context) error {
	items, err := h.Checkins.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, items)
}
