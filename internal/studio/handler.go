package studio

import (
	"errors"
	"net/http"
	"strconv"

	"fitify/internal/api"

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

// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request body CreateLocationRequest true "Location"
// @Success      201 {object} Location
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/locations [post]
func (h *Handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	location, err := h.service.CreateLocation(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create location"})
		return
	}

	c.JSON(http.StatusCreated, location)
}

// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Success      200 {array} Location
// @Failure      500 {object} api.ErrorResponse
// @Router       /locations [get]
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.GetAllLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch locations"})
		return
	}

	c.JSON(http.StatusOK, locations)
}

// @Summary      Get location
// @Tags         locations
// @Produce      json
// @Param        locationID path int true "Location ID"
// @Success      200 {object} Location
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /locations/{locationID} [get]
func (h *Handler) GetLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("locationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid location ID"})
		return
	}

	location, err := h.service.GetLocationByID(c.Request.Context(), locationID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Location not found"})
		return
	}

	c.JSON(http.StatusOK, location)
}

// @Summary      Create a coach
// @Tags         coaches
// @Accept       json
// @Produce      json
// @Param        locationID path int true "Location ID"
// @Param        request body CreateCoachRequest true "Coach"
// @Success      201 {object} Coach
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/locations/{locationID}/coaches [post]
func (h *Handler) CreateCoach(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("locationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid location ID"})
		return
	}

	var req CreateCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	coach, err := h.service.CreateCoach(c.Request.Context(), locationID, req)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create coach"})
		return
	}

	c.JSON(http.StatusCreated, coach)
}

// @Summary      List coaches
// @Tags         coaches
// @Produce      json
// @Param        locationID path int true "Location ID"
// @Success      200 {array} Coach
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /locations/{locationID}/coaches [get]
func (h *Handler) ListCoaches(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("locationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid location ID"})
		return
	}

	coaches, err := h.service.ListCoaches(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch coaches"})
		return
	}

	c.JSON(http.StatusOK, coaches)
}

// @Summary      Activate or deactivate a coach
// @Tags         coaches
// @Accept       json
// @Produce      json
// @Param        coachID path int true "Coach ID"
// @Param        request body SetCoachActiveRequest true "Active flag"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/coaches/{coachID}/active [put]
func (h *Handler) SetCoachActive(c *gin.Context) {
	coachID, err := strconv.Atoi(c.Param("coachID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid coach ID"})
		return
	}

	var req SetCoachActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.SetCoachActive(c.Request.Context(), coachID, *req.Active); err != nil {
		if errors.Is(err, ErrCoachNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Coach not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update coach"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Coach updated"})
}
