package payment

import (
	"errors"
	"net/http"
	"strconv"

	"velobook/internal/auth"
	"velobook/internal/booking"
	"velobook/internal/subscription"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Process godoc
// @Summary      Pay for a booking
// @Description  Settles an UNPAID booking by card, subscription token, or pay-in-person.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ProcessPaymentRequest  true  "Payment data"
// @Success      201      {object}  Payment
// @Failure      400      {object}  api.CodedErrorResponse
// @Failure      402      {object}  api.CodedErrorResponse
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /payments [post]
func (h *Handler) Process(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.ProcessPayment(c.Request.Context(), userID, &req)
	if err != nil {
		var failed *FailedError
		switch {
		case errors.As(err, &failed):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":  "Payment failed",
				"code":   failed.Code,
				"detail": failed.Detail,
			})
		case errors.Is(err, booking.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, booking.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to this user"})
		case errors.Is(err, ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is already paid"})
		case errors.Is(err, ErrPaymentPending):
			c.JSON(http.StatusConflict, gin.H{"error": "A payment for this booking is already pending"})
		case errors.Is(err, ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, subscription.ErrNoActiveSubscription):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription with available tokens"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ReceiveInPerson godoc
// @Summary      Record in-person payment
// @Description  Marks a pending pay-in-person payment as collected by cash or card terminal.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "Payment ID"
// @Param        request  body      ReceiveInPersonRequest  true  "Collection method"
// @Success      200      {object}  Payment
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /payments/{id}/receive [post]
func (h *Handler) ReceiveInPerson(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req ReceiveInPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.ReceiveInPerson(c.Request.Context(), paymentID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, ErrInvalidMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Method must be CASH or CARD_IN_PERSON"})
		case errors.Is(err, ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// Refund godoc
// @Summary      Refund a payment
// @Description  Refunds a completed payment and cancels its booking. Admin only.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Payment ID"
// @Param        request  body      RefundRequest  true  "Refund reason"
// @Success      200      {object}  Payment
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      502      {object}  api.CodedErrorResponse
// @Router       /admin/payments/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Refund(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrRefundFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Refund failed",
				"code":  CodeRefundFailed,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// Get godoc
// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      int  true  "Payment ID"
// @Success      200 {object}  Payment
// @Failure      403 {object}  gin.H
// @Failure      404 {object}  gin.H
// @Router       /admin/payments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	role, _ := auth.GetUserRole(c)

	p, err := h.service.GetPayment(c.Request.Context(), userID, role, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, ErrNotPaymentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Payment does not belong to this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// ListMine godoc
// @Summary      List my payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Payment
// @Router       /payments/me [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	payments, err := h.service.GetMyPayments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetByBooking godoc
// @Summary      Get payment for a booking
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  Payment
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /payments/booking/{bookingId} [get]
func (h *Handler) GetByBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	role, _ := auth.GetUserRole(c)

	p, err := h.service.GetByBooking(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, ErrNotPaymentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Payment does not belong to this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}
