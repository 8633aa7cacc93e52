package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/pkg/database"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// CreateFinanceEntry records a financial movement
func CreateFinanceEntry(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	var req struct {
		Kind        string    `json:"kind"`
		Category    string    `json:"category"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse finance entry request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Kind != model.FinanceKindIncome && req.Kind != model.FinanceKindExpense {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be 'income' or 'expense'"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	entry := model.FinanceEntry{
		ChurchID:    churchID,
		Kind:        req.Kind,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&entry); result.Error != nil {
		log.Error("Failed to create finance entry", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "finance entry creation failed"})
	}

	prometheus.FinanceEntryCounter.WithLabelValues(entry.Kind).Inc()

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Finance entry created successfully",
		"entry":   entry,
	})
}

// ListFinanceEntries retrieves finance entries for a period
func ListFinanceEntries(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "church context required"})
	}

	query := database.GetDB().Where("church_id = ?", churchID)

	if kind := c.QueryParam("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if from := c.QueryParam("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var entries []model.FinanceEntry
	if result := query.Order("date DESC").Find(&entries); result.Error != nil {
		log.Error("Failed to retrieve finance entries", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve finance entries"})
	}

	return c.JSON(http.StatusOK, entries)
}

// FinanceSummaryHandler totals income and expenses for a period
func FinanceSummaryHandler(c echo.Context) error {
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

	defer prometheus.TrackDBOperation("query")(time.Now())

	var entries []model.FinanceEntry
	if result := query.Find(&entries); result.Error != nil {
		log.Error("Failed to retrieve finance entries for summary", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute summary"})
	}

	return c.JSON(http.StatusOK, model.SummarizeFinance(entries))
}
