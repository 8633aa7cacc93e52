package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/internal/service"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
)

// candidateResponse is the reduced church view returned from candidate
// lookups. The full record (contact data, permissions) stays private.
type candidateResponse struct {
	ID       uint               `json:"id"`
	Name     string             `json:"name"`
	Code     string             `json:"code"`
	City     string             `json:"city,omitempty"`
	Category hierarchy.Category `json:"category"`
}

func toCandidateResponse(ch *model.Church) candidateResponse {
	return candidateResponse{
		ID:       ch.ID,
		Name:     ch.Name,
		Code:     ch.Code,
		City:     ch.City,
		Category: ch.CategoryOrTop(),
	}
}

// NetworkHandler exposes the church-network linking and sharing endpoints
type NetworkHandler struct {
	network  *service.NetworkService
	gate     *service.AggregateService
	churches repository.ChurchRepository
}

// NewNetworkHandler creates a NetworkHandler
func NewNetworkHandler(network *service.NetworkService, gate *service.AggregateService, churches repository.ChurchRepository) *NetworkHandler {
	return &NetworkHandler{
		network:  network,
		gate:     gate,
		churches: churches,
	}
}

// FindCandidate looks up a parent candidate by its public short code
func (h *NetworkHandler) FindCandidate(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	code := c.QueryParam("code")
	candidate, err := h.network.FindCandidate(c.Request().Context(), churchID, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCandidateNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no church found for this code"})
		case errors.Is(err, service.ErrSelfLink):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "a church cannot link to itself"})
		default:
			log.Error("Candidate lookup failed", zap.String("code", code), zap.Error(err))
			return h.storeErrorResponse(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"candidate": toCandidateResponse(candidate),
	})
}

// EligibleCategories returns the categories the caller may take beneath the
// given candidate parent
func (h *NetworkHandler) EligibleCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	if _, _, ok := currentChurchID(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	candidateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate ID"})
	}

	candidate, err := h.churches.GetByID(c.Request().Context(), uint(candidateID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
		}
		log.Error("Candidate retrieval failed", zap.Uint64("candidate_id", candidateID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve candidate"})
	}

	eligible, err := h.network.EligibleCategories(candidate)
	if err != nil {
		if errors.Is(err, service.ErrNoEligibleCategory) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": "nothing can link beneath a church at the lowest rank",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute eligible categories"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"candidate":  toCandidateResponse(candidate),
		"categories": eligible,
	})
}

// ConfirmLink links the caller's church under the chosen parent with the
// chosen category and permission flags
func (h *NetworkHandler) ConfirmLink(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	var req struct {
		ParentID    uint                  `json:"parent_id"`
		Category    hierarchy.Category    `json:"category"`
		Permissions model.PermissionFlags `json:"permissions"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse link confirmation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.ParentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent_id is required"})
	}
	if !hierarchy.IsValid(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	linked, err := h.network.ConfirmLink(c.Request().Context(), churchID, req.ParentID, req.Category, req.Permissions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfLink):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "a church cannot link to itself"})
		case errors.Is(err, service.ErrCandidateNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "parent church not found"})
		case errors.Is(err, service.ErrChurchNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
		case errors.Is(err, service.ErrNoEligibleCategory), errors.Is(err, service.ErrIneligibleCategory):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		default:
			log.Error("Link confirmation failed",
				logger.ChurchField(churchID),
				zap.Uint("parent_id", req.ParentID),
				zap.Error(err))
			return h.storeErrorResponse(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Church linked successfully",
		"church":  linked,
	})
}

// Unlink removes the caller's link to its parent
func (h *NetworkHandler) Unlink(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	church, err := h.network.Unlink(c.Request().Context(), churchID)
	if err != nil {
		if errors.Is(err, service.ErrChurchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
		}
		log.Error("Unlink failed", logger.ChurchField(churchID), zap.Error(err))
		return h.storeErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Church unlinked successfully",
		"church":  church,
	})
}

// UpdatePermissions replaces the permission flags the caller shares with
// its parent
func (h *NetworkHandler) UpdatePermissions(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	var req struct {
		Permissions model.PermissionFlags `json:"permissions"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse permissions update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	church, err := h.network.UpdatePermissions(c.Request().Context(), churchID, req.Permissions)
	if err != nil {
		if errors.Is(err, service.ErrChurchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
		}
		log.Error("Permissions update failed", logger.ChurchField(churchID), zap.Error(err))
		return h.storeErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Permissions updated successfully",
		"permissions": church.Permissions,
	})
}

// ListChildren returns the churches linked under the caller's church
func (h *NetworkHandler) ListChildren(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	children, err := h.network.ListChildren(c.Request().Context(), churchID)
	if err != nil {
		log.Error("Children listing failed", logger.ChurchField(churchID), zap.Error(err))
		return h.storeErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"children": children,
		"count":    len(children),
	})
}

// ChildAggregates returns the aggregates of a linked child church the
// caller's permissions allow. Ungranted capabilities are simply omitted
// from the response.
func (h *NetworkHandler) ChildAggregates(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	childID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid child ID"})
	}

	child, err := h.churches.GetByID(c.Request().Context(), uint(childID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
		}
		log.Error("Child retrieval failed", zap.Uint64("child_id", childID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve church"})
	}

	// The target must actually be linked under the caller. Responding 404
	// instead of 403 avoids confirming the church's existence to strangers.
	if child.ParentID == nil || *child.ParentID != churchID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	bundle := h.gate.FetchAuthorizedAggregates(c.Request().Context(), churchID, child)

	return c.JSON(http.StatusOK, bundle)
}

// storeErrorResponse maps the store-error taxonomy to HTTP statuses
func (h *NetworkHandler) storeErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrStoreAuthorization):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation rejected by the data store"})
	case errors.Is(err, service.ErrStoreTransient):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary failure, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
