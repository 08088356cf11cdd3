package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velobook/internal/auth"
	"velobook/internal/catalog"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary      Create booking
// @Description  Reserves a trainer slot in UNPAID state. Payment happens separately.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking data"
// @Success      201      {object}  Booking
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidBookingTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrBookingConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Trainer is already booked for this time"})
		case errors.Is(err, ErrPlayerNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "Player does not belong to you"})
		case errors.Is(err, catalog.ErrOptionNotFound), errors.Is(err, catalog.ErrTrainerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithDetails
// @Failure      401  {object}  gin.H
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.service.GetMyBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Get godoc
// @Summary      Get booking by ID
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := auth.GetUserRole(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), userID, role, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Cancels an UNPAID or CONFIRMED booking. CONFIRMED bookings require 24 hours notice. Token payments are returned automatically.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true   "Booking ID"
// @Param        request  body      CancelBookingRequest  false  "Cancellation reason"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /bookings/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := auth.GetUserRole(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.Cancel(c.Request.Context(), userID, role, id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		case errors.Is(err, ErrInvalidBookingTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// MarkNoShow godoc
// @Summary      Mark booking as no-show
// @Description  Trainer marks a CONFIRMED booking as NO_SHOW after the session start time.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  gin.H
// @Failure      400  {object}  gin.H
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Router       /trainer/bookings/{id}/no-show [post]
func (h *Handler) MarkNoShow(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	err = h.service.MarkNoShow(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, catalog.ErrTrainerNotFound), errors.Is(err, ErrNotTrainerBooking):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		case errors.Is(err, ErrInvalidBookingTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotConfirmed):
			c.JSON(http.StatusConflict, gin.H{"error": "Only confirmed bookings can be marked as no-show"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark no-show"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking marked as no-show"})
}

// ListForTrainer godoc
// @Summary      List trainer's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithDetails
// @Failure      403  {object}  gin.H
// @Router       /trainer/bookings [get]
func (h *Handler) ListForTrainer(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.service.GetTrainerBookings(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrTrainerNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No trainer profile for this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// OverrideStatus godoc
// @Summary      Override booking status
// @Description  Admin-only unconstrained status correction.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Booking ID"
// @Param        request  body      OverrideStatusRequest  true  "New status"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/bookings/{id}/status [put]
func (h *Handler) OverrideStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.AdminOverrideStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown booking status"})
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking status updated"})
}

// ListByStatus godoc
// @Summary      List bookings by status
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  true  "Booking status"
// @Success      200     {array}   Booking
// @Failure      400     {object}  gin.H
// @Router       /admin/bookings [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status := Status(c.Query("status"))

	bookings, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		if errors.Is(err, ErrUnknownStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown booking status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// TriggerSweep godoc
// @Summary      Run auto-complete sweep
// @Description  Completes CONFIRMED bookings whose session ended more than 24 hours ago. Returns the count.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /admin/bookings/sweep [post]
func (h *Handler) TriggerSweep(c *gin.Context) {
	count, err := h.service.AutoCompleteSweep(c.Request.Context(), time.Now(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": count})
}
