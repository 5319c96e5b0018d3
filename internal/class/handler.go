package class

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitify/internal/api"
	"fitify/internal/db"
	"fitify/internal/metrics"
	"fitify/internal/retry"
	"fitify/internal/studio"

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

// @Summary      Create a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        request body CreateClassRequest true "Class"
// @Success      201 {object} Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cls, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, studio.ErrLocationNotFound), errors.Is(err, studio.ErrCoachNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrCoachNotActive), errors.Is(err, ErrCoachTimeConflict):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create class"})
		}
		return
	}

	c.JSON(http.StatusCreated, cls)
}

// @Summary      Update a class
// @Description  Mutates class fields. Start/end/capacity changes notify confirmed users.
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body UpdateClassRequest true "Fields to update"
// @Success      200 {object} Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ConflictResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID} [patch]
func (h *Handler) UpdateClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var cls *Class
	err = retry.Do(c.Request.Context(), retry.DefaultAttempts, func(ctx context.Context) error {
		var opErr error
		cls, opErr = h.service.UpdateClass(ctx, classID, req)
		return opErr
	})
	if err != nil {
		h.respondUpdateError(c, err)
		return
	}

	c.JSON(http.StatusOK, cls)
}

func (h *Handler) respondUpdateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrClassNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
	case errors.Is(err, ErrInvalidSchedule):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrCoachTimeConflict), errors.Is(err, ErrCapacityBelowConfirmed):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, db.ErrVersionConflict):
		metrics.RecordVersionConflict("update_class")
		c.JSON(http.StatusConflict, api.ConflictResponse{Error: "concurrent update, please retry", Retryable: true})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update class"})
	}
}

// @Summary      Cancel a class
// @Description  Cancels the class, bulk-cancels its bookings and clears the waitlist.
// @Tags         classes
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {object} CancelClassResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ConflictResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/cancel [post]
func (h *Handler) CancelClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	var result *CancelClassResult
	err = retry.Do(c.Request.Context(), retry.DefaultAttempts, func(ctx context.Context) error {
		var opErr error
		result, opErr = h.service.CancelClass(ctx, classID)
		return opErr
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		case errors.Is(err, db.ErrVersionConflict):
			metrics.RecordVersionConflict("cancel_class")
			c.JSON(http.StatusConflict, api.ConflictResponse{Error: "concurrent update, please retry", Retryable: true})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel class"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Get class
// @Tags         classes
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {object} Class
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [get]
func (h *Handler) GetClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	cls, err := h.service.GetClass(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		return
	}

	c.JSON(http.StatusOK, cls)
}

// @Summary      List upcoming classes for a location
// @Tags         classes
// @Produce      json
// @Param        locationID path int true "Location ID"
// @Success      200 {array} ClassWithAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /locations/{locationID}/classes [get]
func (h *Handler) ListUpcoming(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("locationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid location ID"})
		return
	}

	classes, err := h.service.ListUpcoming(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, studio.ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      List classes by coach and time range
// @Tags         classes
// @Produce      json
// @Param        coachID path int true "Coach ID"
// @Param        from query string true "Start datetime (RFC3339)"
// @Param        to query string true "End datetime (RFC3339)"
// @Success      200 {array} Class
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/coaches/{coachID}/classes [get]
func (h *Handler) ListByCoach(c *gin.Context) {
	coachID, err := strconv.Atoi(c.Param("coachID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid coach ID"})
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	classes, err := h.service.ListByCoach(c.Request.Context(), coachID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Class utilization over a date range
// @Tags         analytics
// @Produce      json
// @Param        from query string true "Start datetime (RFC3339)"
// @Param        to query string true "End datetime (RFC3339)"
// @Success      200 {array} UtilizationStat
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/analytics/utilization [get]
func (h *Handler) GetUtilization(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	stats, err := h.service.Utilization(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from": from,
		"to":   to,
		"data": stats,
	})
}

// @Summary      Cancellation count over a date range
// @Tags         analytics
// @Produce      json
// @Param        from query string true "Start datetime (RFC3339)"
// @Param        to query string true "End datetime (RFC3339)"
// @Param        location_id query int false "Scope to a location"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/analytics/cancellations [get]
func (h *Handler) GetCancellations(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	var locationID *int
	if raw := c.Query("location_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid location_id"})
			return
		}
		locationID = &id
	}

	count, err := h.service.CancellationCount(c.Request.Context(), from, to, locationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  from,
		"to":    to,
		"count": count,
	})
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from and to query params are required"})
		return time.Time{}, time.Time{}, false
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from format, use RFC3339"})
		return time.Time{}, time.Time{}, false
	}

	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to format, use RFC3339"})
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
