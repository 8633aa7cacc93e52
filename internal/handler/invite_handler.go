package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/pkg/database"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// InviteHandler manages member invitations for a church
type InviteHandler struct {
	ttl time.Duration
}

// NewInviteHandler creates an invite handler with the configured token TTL
func NewInviteHandler(ttl time.Duration) *InviteHandler {
	return &InviteHandler{ttl: ttl}
}

// CreateInvite issues a new member invitation. The raw token is returned
// once in the response; only its hash is persisted.
func (h *InviteHandler) CreateInvite(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invite creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	if req.Role == "" {
		req.Role = "member"
	}

	rawToken := uuid.New().String()

	invite := model.Invite{
		ChurchID:  churchID,
		Email:     req.Email,
		Role:      req.Role,
		ExpiresAt: time.Now().Add(h.ttl),
	}
	if err := invite.SetToken(rawToken); err != nil {
		log.Error("Failed to hash invite token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invite creation failed"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&invite); result.Error != nil {
		log.Error("Failed to create invite",
			zap.Uint("church_id", churchID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invite creation failed"})
	}

	prometheus.InviteCounter.WithLabelValues("created").Inc()
	log.Info("Invite created",
		zap.Uint("church_id", churchID),
		zap.Uint("invite_id", invite.ID),
		zap.String("email", req.Email))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Invite created successfully",
		"invite":  invite,
		"token":   rawToken,
	})
}

// ListInvites retrieves pending invites for the caller's church
func (h *InviteHandler) ListInvites(c echo.Context) error {
	log := logger.FromEcho(c)

	_, churchID, ok := currentChurchID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "church context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var invites []model.Invite
	result := database.GetDB().
		Where("church_id = ? AND accepted_at IS NULL", churchID).
		Order("created_at DESC").
		Find(&invites)
	if result.Error != nil {
		log.Error("Failed to retrieve invites", zap.Uint("church_id", churchID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invites"})
	}

	return c.JSON(http.StatusOK, invites)
}

// AcceptInvite redeems an invite token and enrolls the invitee as a member
func (h *InviteHandler) AcceptInvite(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invite ID"})
	}

	var req struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invite acceptance request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and name are required"})
	}

	var invite model.Invite
	if result := database.GetDB().First(&invite, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invite not found"})
	}

	if !invite.MatchToken(req.Token) {
		prometheus.InviteCounter.WithLabelValues("rejected").Inc()
		log.Warn("Invite token mismatch", zap.Uint64("invite_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid invite token"})
	}
	if invite.Accepted() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invite already accepted"})
	}
	if invite.Expired(time.Now()) {
		prometheus.InviteCounter.WithLabelValues("expired").Inc()
		return c.JSON(http.StatusGone, echo.Map{"error": "invite expired"})
	}

	member := model.Member{
		ChurchID: invite.ChurchID,
		Name:     req.Name,
		Email:    invite.Email,
		Role:     invite.Role,
		Active:   true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&invite).Update("accepted_at", &now).Error
	})
	if err != nil {
		log.Error("Failed to accept invite",
			zap.Uint64("invite_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invite acceptance failed"})
	}

	prometheus.InviteCounter.WithLabelValues("accepted").Inc()
	prometheus.MemberOperationCounter.WithLabelValues("create").Inc()
	log.Info("Invite accepted",
		zap.Uint64("invite_id", id),
		zap.Uint("church_id", invite.ChurchID),
		zap.Uint("member_id", member.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Invite accepted successfully",
		"member":  member,
	})
}
