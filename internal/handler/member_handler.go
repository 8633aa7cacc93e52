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

// CreateMember handles member creation
func CreateMember(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.MemberOperationCounter.WithLabelValues("create").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		log.Error("Church context missing from user claims")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		Name         string     `json:"name"`
		Email        string     `json:"email"`
		Phone        string     `json:"phone"`
		BirthDate    *time.Time `json:"birth_date"`
		Role         string     `json:"role"`
		Baptized     bool       `json:"baptized"`
		DepartmentID *uint      `json:"department_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	member := model.Member{
		ChurchID:     churchID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		BirthDate:    req.BirthDate,
		Role:         req.Role,
		Baptized:     req.Baptized,
		DepartmentID: req.DepartmentID,
		Active:       true,
	}
	if member.Role == "" {
		member.Role = "member"
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&member); result.Error != nil {
		log.Error("Failed to create member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member creation failed"})
	}

	log.Info("Member created",
		zap.String("name", member.Name),
		zap.Uint("id", member.ID),
		zap.Uint("church_id", member.ChurchID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Member created successfully",
		"member":  member,
	})
}

// GetMember retrieves member details
func GetMember(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.MemberOperationCounter.WithLabelValues("access").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var member model.Member
	if result := database.GetDB().Preload("Department").First(&member, id); result.Error != nil {
		log.Error("Member not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	if member.ChurchID != churchID {
		log.Warn("Cross-church member access attempt",
			zap.Uint("requesting_church_id", churchID),
			zap.Uint("member_church_id", member.ChurchID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, member)
}

// ListMembers retrieves the church's members, optionally filtered
func ListMembers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.MemberOperationCounter.WithLabelValues("list").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	query := database.GetDB().Where("church_id = ?", churchID)

	if role := c.QueryParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if deptID := c.QueryParam("department_id"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}
	if active := c.QueryParam("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var members []model.Member
	if result := query.Order("name").Find(&members); result.Error != nil {
		log.Error("Failed to retrieve members", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve members"})
	}

	return c.JSON(http.StatusOK, members)
}

// UpdateMember updates member details
func UpdateMember(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.MemberOperationCounter.WithLabelValues("update").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	var member model.Member
	if result := database.GetDB().First(&member, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	if member.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name         *string    `json:"name"`
		Email        *string    `json:"email"`
		Phone        *string    `json:"phone"`
		BirthDate    *time.Time `json:"birth_date"`
		Role         *string    `json:"role"`
		Baptized     *bool      `json:"baptized"`
		DepartmentID *uint      `json:"department_id"`
		Active       *bool      `json:"active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		member.BirthDate = req.BirthDate
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Baptized != nil {
		member.Baptized = *req.Baptized
	}
	if req.DepartmentID != nil {
		member.DepartmentID = req.DepartmentID
	}
	if req.Active != nil {
		member.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&member); result.Error != nil {
		log.Error("Failed to update member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member update failed"})
	}

	return c.JSON(http.StatusOK, member)
}

// DeleteMember soft-deletes a member
func DeleteMember(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.MemberOperationCounter.WithLabelValues("delete").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	var member model.Member
	if result := database.GetDB().First(&member, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	if member.ChurchID != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := database.GetDB().Delete(&member); result.Error != nil {
		log.Error("Failed to delete member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member deletion failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Member deleted successfully"})
}
