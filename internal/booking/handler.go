package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"fitify/internal/api"
	"fitify/internal/db"
	"fitify/internal/metrics"
	"fitify/internal/retry"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

type BookRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

// @Summary      Book a class
// @Description  Confirms a seat or joins the waitlist when the class is full.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body BookRequest true "User"
// @Success      201 {object} BookResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID}/book [post]
func (h *Handler) BookClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var result *BookResult
	err = retry.Do(c.Request.Context(), retry.DefaultAttempts, func(ctx context.Context) error {
		var opErr error
		result, opErr = h.service.BookClass(ctx, classID, req.UserID)
		return opErr
	})
	if err != nil {
		h.respondBookError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) respondBookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrClassNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
	case errors.Is(err, ErrClassNotBookable):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Class is not bookable"})
	case errors.Is(err, ErrAlreadyBooked):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a booking or waitlist spot for this class"})
	case errors.Is(err, ErrScheduleConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You have an overlapping booking"})
	case errors.Is(err, ErrDailyLimitExceeded):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Daily booking limit exceeded"})
	case errors.Is(err, ErrWaitlistFull):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Waitlist is full"})
	case errors.Is(err, db.ErrVersionConflict):
		metrics.RecordVersionConflict("book_class")
		c.JSON(http.StatusConflict, api.ConflictResponse{Error: "concurrent update, please retry", Retryable: true})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to book class"})
	}
}

// @Summary      Cancel a booking
// @Description  Frees the seat and promotes the first eligible waitlisted user.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body BookRequest true "User"
// @Success      200 {object} CancelResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var result *CancelResult
	err = retry.Do(c.Request.Context(), retry.DefaultAttempts, func(ctx context.Context) error {
		var opErr error
		result, opErr = h.service.CancelBooking(ctx, classID, req.UserID)
		return opErr
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrCancellationWindowClosed):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Cancellation window has closed"})
		case errors.Is(err, db.ErrVersionConflict):
			metrics.RecordVersionConflict("cancel_booking")
			c.JSON(http.StatusConflict, api.ConflictResponse{Error: "concurrent update, please retry", Retryable: true})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Leave a waitlist
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body BookRequest true "User"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ConflictResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes/{classID}/waitlist/leave [post]
func (h *Handler) LeaveWaitlist(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err = retry.Do(c.Request.Context(), retry.DefaultAttempts, func(ctx context.Context) error {
		return h.service.RemoveFromWaitlist(ctx, classID, req.UserID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		case errors.Is(err, ErrWaitlistEntryNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Waitlist entry not found"})
		case errors.Is(err, db.ErrVersionConflict):
			metrics.RecordVersionConflict("leave_waitlist")
			c.JSON(http.StatusConflict, api.ConflictResponse{Error: "concurrent update, please retry", Retryable: true})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to leave waitlist"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Removed from waitlist"})
}

// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200 {array} BookingWithClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /users/{userID}/bookings [get]
func (h *Handler) ListUserBookings(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	bookings, err := h.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      List bookings for a class
// @Tags         bookings
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {array} Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/bookings [get]
func (h *Handler) ListClassBookings(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	bookings, err := h.service.GetClassBookings(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      List the waitlist for a class
// @Tags         bookings
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {array} WaitlistEntry
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/waitlist [get]
func (h *Handler) ListWaitlist(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	entries, err := h.service.GetWaitlist(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch waitlist"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
