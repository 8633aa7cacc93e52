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

// CreateSchedule handles creation of a recurring service schedule
func CreateSchedule(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		Title       string `json:"title"`
		Weekday     int    `json:"weekday"`
		StartTime   string `json:"start_time"`
		Description string `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse schedule creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be between 0 (Sunday) and 6 (Saturday)"})
	}

	schedule := model.Schedule{
		ChurchID:    churchID,
		Title:       req.Title,
		Weekday:     time.Weekday(req.Weekday),
		StartTime:   req.StartTime,
		Description: req.Description,
		Active:      true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&schedule); result.Error != nil {
		log.Error("Failed to create schedule", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Schedule created successfully",
		"schedule": schedule,
	})
}

// ListSchedules retrieves the church's service schedules
func ListSchedules(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var schedules []model.Schedule
	if result := database.GetDB().Where("church_id = ?", churchID).Order("weekday, start_time").Find(&schedules); result.Error != nil {
		log.Error("Failed to retrieve schedules", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve schedules"})
	}

	return c.JSON(http.StatusOK, schedules)
}

// UpdateSchedule updates a schedule
func UpdateSchedule(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule ID"})
	}

	var schedule model.Schedule
	if result := database.GetDB().First(&schedule, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}

	if schedule.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Title       *string `json:"title"`
		Weekday     *int    `json:"weekday"`
		StartTime   *string `json:"start_time"`
		Description *string `json:"description"`
		Active      *bool   `json:"active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse schedule update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Weekday != nil {
		if *req.Weekday < 0 || *req.Weekday > 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be between 0 (Sunday) and 6 (Saturday)"})
		}
		schedule.Weekday = time.Weekday(*req.Weekday)
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.Active != nil {
		schedule.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&schedule); result.Error != nil {
		log.Error("Failed to update schedule", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule update failed"})
	}

	return c.JSON(http.StatusOK, schedule)
}

// CreateServiceRecord records attendance for one held service
func CreateServiceRecord(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		ScheduleID *uint     `json:"schedule_id"`
		Date       time.Time `json:"date"`
		Attendance int       `json:"attendance"`
		Visitors   int       `json:"visitors"`
		Converts   int       `json:"converts"`
		Notes      string    `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse service record request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	if req.Attendance < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "attendance cannot be negative"})
	}

	record := model.ServiceRecord{
		ChurchID:   churchID,
		ScheduleID: req.ScheduleID,
		Date:       req.Date,
		Attendance: req.Attendance,
		Visitors:   req.Visitors,
		Converts:   req.Converts,
		Notes:      req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&record); result.Error != nil {
		log.Error("Failed to create service record", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service record creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Service record created successfully",
		"record":  record,
	})
}

// ListServiceRecords retrieves attendance history, newest first
func ListServiceRecords(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	query := database.GetDB().Where("church_id = ?", churchID)

	if from := c.QueryParam("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var records []model.ServiceRecord
	if result := query.Order("date DESC").Limit(limit).Find(&records); result.Error != nil {
		log.Error("Failed to retrieve service records", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve service records"})
	}

	return c.JSON(http.StatusOK, records)
}
