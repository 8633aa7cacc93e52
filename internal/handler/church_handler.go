package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/pkg/database"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// CreateChurch handles church (tenant) creation
func CreateChurch(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ChurchOperationCounter.WithLabelValues("create").Inc()

	claims, ok := currentClaims(c)
	if !ok {
		log.Error("Failed to get user claims from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		City           string `json:"city"`
		Category       string `json:"category"`
		DenominationID *uint  `json:"denomination_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse church creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	category := hierarchy.Category(req.Category)
	if req.Category == "" {
		category = hierarchy.Top()
	}
	if !hierarchy.IsValid(category) {
		log.Error("Invalid hierarchy category", zap.String("category", req.Category))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}

	church := model.Church{
		Name:           req.Name,
		Code:           generateChurchCode(req.City),
		Email:          req.Email,
		Phone:          req.Phone,
		City:           req.City,
		Category:       category,
		Permissions:    model.PermissionFlags{},
		DenominationID: req.DenominationID,
		OwnerID:        claims.UserID,
		Active:         true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&church); result.Error != nil {
		log.Error("Failed to create church", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "church creation failed"})
	}

	log.Info("Church created",
		zap.String("name", church.Name),
		zap.String("code", church.Code),
		zap.Uint("id", church.ID),
		zap.Uint("owner_id", church.OwnerID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Church created successfully",
		"church":  church,
	})
}

// GetChurch retrieves church details
func GetChurch(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ChurchOperationCounter.WithLabelValues("access").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		log.Error("Church context missing from user claims")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid church ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid church ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var church model.Church
	if result := database.GetDB().Preload("Denomination").Preload("Plan").First(&church, id); result.Error != nil {
		log.Error("Church not found", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	// A church may only read its own record through this endpoint;
	// cross-church visibility goes through the network read gate
	if church.ID != churchID {
		log.Warn("Cross-church access attempt",
			zap.Uint("requesting_church_id", churchID),
			zap.Uint("target_church_id", church.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, church)
}

// UpdateChurch updates the authenticated user's church profile
func UpdateChurch(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.ChurchOperationCounter.WithLabelValues("update").Inc()

	_, churchID, ok := currentChurchID(c)
	if !ok {
		log.Error("Church context missing from user claims")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || uint(id) != churchID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name           *string `json:"name"`
		Email          *string `json:"email"`
		Phone          *string `json:"phone"`
		City           *string `json:"city"`
		DenominationID *uint   `json:"denomination_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse church update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var church model.Church
	if result := database.GetDB().First(&church, churchID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	if req.Name != nil {
		church.Name = *req.Name
	}
	if req.Email != nil {
		church.Email = *req.Email
	}
	if req.Phone != nil {
		church.Phone = *req.Phone
	}
	if req.City != nil {
		church.City = *req.City
	}
	if req.DenominationID != nil {
		church.DenominationID = req.DenominationID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&church); result.Error != nil {
		log.Error("Failed to update church", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "church update failed"})
	}

	return c.JSON(http.StatusOK, church)
}

// generateChurchCode builds a short public code like "rj4f2a" from the
// city prefix plus random hex. Uniqueness is enforced by the database index.
func generateChurchCode(city string) string {
	letters := make([]byte, 0, 2)
	for _, r := range strings.ToLower(city) {
		if r >= 'a' && r <= 'z' {
			letters = append(letters, byte(r))
			if len(letters) == 2 {
				break
			}
		}
	}
	prefix := "ch"
	if len(letters) == 2 {
		prefix = string(letters)
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	return prefix + random
}
