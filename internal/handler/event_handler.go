package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/pkg/database"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// CreateEvent handles event creation
func CreateEvent(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		Title       string     `json:"title"`
		Location    string     `json:"location"`
		StartsAt    time.Time  `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		Description string     `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse event creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at is required"})
	}

	event := model.Event{
		ChurchID:    churchID,
		Title:       req.Title,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&event); result.Error != nil {
		log.Error("Failed to create event", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "event creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Event created successfully",
		"event":   event,
	})
}

// ListEvents retrieves the church's events
func ListEvents(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	query := database.GetDB().Where("church_id = ?", churchID)

	if c.QueryParam("upcoming") == "true" {
		query = query.Where("starts_at > ?", time.Now())
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var events []model.Event
	if result := query.Order("starts_at").Find(&events); result.Error != nil {
		log.Error("Failed to retrieve events", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve events"})
	}

	return c.JSON(http.StatusOK, events)
}

// DeleteEvent soft-deletes an event
func DeleteEvent(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event ID"})
	}

	var event model.Event
	if result := database.GetDB().First(&event, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}

	if event.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := database.GetDB().Delete(&event); result.Error != nil {
		log.Error("Failed to delete event", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "event deletion failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}
