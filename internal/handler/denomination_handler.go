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

// CreateDenomination handles denomination creation
func CreateDenomination(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name        string `json:"name"`
		Acronym     string `json:"acronym"`
		Description string `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse denomination creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	denomination := model.Denomination{
		Name:        req.Name,
		Acronym:     req.Acronym,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&denomination); result.Error != nil {
		log.Error("Failed to create denomination", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "denomination creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Denomination created successfully",
		"denomination": denomination,
	})
}

// ListDenominations retrieves all denominations
func ListDenominations(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var denominations []model.Denomination
	if result := database.GetDB().Order("name").Find(&denominations); result.Error != nil {
		log.Error("Failed to retrieve denominations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve denominations"})
	}

	return c.JSON(http.StatusOK, denominations)
}

// GetDenomination retrieves one denomination
func GetDenomination(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid denomination ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var denomination model.Denomination
	if result := database.GetDB().First(&denomination, id); result.Error != nil {
		log.Error("Denomination not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "denomination not found"})
	}

	return c.JSON(http.StatusOK, denomination)
}
