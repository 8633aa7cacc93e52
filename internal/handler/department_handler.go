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

// CreateDepartment handles department creation
func CreateDepartment(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		LeaderID    *uint  `json:"leader_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse department creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	department := model.Department{
		ChurchID:    churchID,
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    req.LeaderID,
		Active:      true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&department); result.Error != nil {
		log.Error("Failed to create department", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "department creation failed"})
	}

	log.Info("Department created",
		zap.String("name", department.Name),
		zap.Uint("id", department.ID),
		zap.Uint("church_id", department.ChurchID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Department created successfully",
		"department": department,
	})
}

// ListDepartments retrieves the church's departments
func ListDepartments(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var departments []model.Department
	if result := database.GetDB().Where("church_id = ?", churchID).Order("name").Find(&departments); result.Error != nil {
		log.Error("Failed to retrieve departments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve departments"})
	}

	return c.JSON(http.StatusOK, departments)
}

// UpdateDepartment updates department details
func UpdateDepartment(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department ID"})
	}

	var department model.Department
	if result := database.GetDB().First(&department, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
	}

	if department.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		LeaderID    *uint   `json:"leader_id"`
		Active      *bool   `json:"active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse department update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if req.LeaderID != nil {
		department.LeaderID = req.LeaderID
	}
	if req.Active != nil {
		department.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&department); result.Error != nil {
		log.Error("Failed to update department", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "department update failed"})
	}

	return c.JSON(http.StatusOK, department)
}

// DeleteDepartment soft-deletes a department
func DeleteDepartment(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department ID"})
	}

	var department model.Department
	if result := database.GetDB().First(&department, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "department not found"})
	}

	if department.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := database.GetDB().Delete(&department); result.Error != nil {
		log.Error("Failed to delete department", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "department deletion failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Department deleted successfully"})
}
