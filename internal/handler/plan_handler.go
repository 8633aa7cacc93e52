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

// CreatePlan handles subscription plan creation
func CreatePlan(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		PriceMonthly float64 `json:"price_monthly"`
		MaxMembers   int     `json:"max_members"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse plan creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.PriceMonthly < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_monthly must not be negative"})
	}

	plan := model.Plan{
		Name:         req.Name,
		Description:  req.Description,
		PriceMonthly: req.PriceMonthly,
		MaxMembers:   req.MaxMembers,
		Active:       true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&plan); result.Error != nil {
		log.Error("Failed to create plan", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "plan creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Plan created successfully",
		"plan":    plan,
	})
}

// ListPlans retrieves active subscription plans
func ListPlans(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var plans []model.Plan
	if result := database.GetDB().Where("active = ?", true).Order("price_monthly").Find(&plans); result.Error != nil {
		log.Error("Failed to retrieve plans", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve plans"})
	}

	return c.JSON(http.StatusOK, plans)
}

// SubscribeToPlan assigns a plan to the caller's church
func SubscribeToPlan(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan ID"})
	}

	var plan model.Plan
	if result := database.GetDB().Where("active = ?", true).First(&plan, planID); result.Error != nil {
		log.Warn("Plan not found for subscription", zap.Uint64("plan_id", planID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().Model(&model.Church{}).
		Where("id = ?", churchID).
		Update("plan_id", plan.ID)
	if result.Error != nil {
		log.Error("Failed to subscribe church to plan",
			zap.Uint("church_id", churchID),
			zap.Uint("plan_id", plan.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscription failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	log.Info("Church subscribed to plan",
		zap.Uint("church_id", churchID),
		zap.Uint("plan_id", plan.ID),
		zap.String("plan", plan.Name))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Subscribed to plan successfully",
		"plan":    plan,
	})
}
