package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PlayerService interface {
	Register(ctx context.Context, player *domain.Player) (domain.Player, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.Player, error)
	ValidateSession(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, playerID uint, token string) error
	VerifyEmail(ctx context.Context, verificationCodeEncrypt string) (err error)
	GetPlayerByID(ctx context.Context, id uint) (domain.Player, error)
	UpdatePlayer(ctx context.Context, id uint, updateData *domain.Player) (domain.Player, error)
	UpdateSegment(ctx context.Context, id uint, segment domain.Segment) error
}

type PlayerHandler struct {
	playerService PlayerService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewPlayerHandler(playerService PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type PlayerRegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type PlayerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PlayerUpdateRequest struct {
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type SegmentUpdateRequest struct {
	Segment string `json:"segment" validate:"required,oneof=new regular vip dormant"`
}

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func (h *PlayerHandler) Register(c echo.Context) error {
	var reqPlayer PlayerRegisterRequest

	if err := c.Bind(&reqPlayer); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqPlayer); err != nil {
		logger.Error("Failed to validate player register", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	player, err := h.playerService.Register(ctx, &domain.Player{
		FullName: reqPlayer.FullName,
		Email:    reqPlayer.Email,
		Password: reqPlayer.Password,
	})
	if err != nil {
		logger.Error("Failed to register player", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"player":  player,
	})
}

func (h *PlayerHandler) Login(c echo.Context) error {
	var reqPlayer PlayerLoginRequest

	if err := c.Bind(&reqPlayer); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqPlayer); err != nil {
		logger.Error("Failed to validate player login", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// get ip address and user agent
	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	token, player, err := h.playerService.Login(ctx, reqPlayer.Email, reqPlayer.Password, ipAddress, userAgent)
	if err != nil {
		logger.Error("Failed to login with player", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"player":  player,
	})
}

// Logout handles player logout by invalidating the session token
func (h *PlayerHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		logger.Error("Failed to get player_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	token, ok := c.Get("token").(string)
	if !ok {
		logger.Error("Failed to get token from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	err := h.playerService.Logout(ctx, playerID, token)
	if err != nil {
		logger.Error("Failed to logout player", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logout successful",
	})
}

func (h *PlayerHandler) VerifyEmail(c echo.Context) error {
	encCode := c.Param("code")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.playerService.VerifyEmail(ctx, encCode)
	if err != nil {
		if strings.Contains(err.Error(), "invalid or expired") {
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, "Successfully verified email")
}

// GetPlayerByID handles getting a player by ID
func (h *PlayerHandler) GetPlayerByID(c echo.Context) error {
	id := c.Param("id")

	var playerID uint
	if _, err := fmt.Sscan(id, &playerID); err != nil {
		logger.Error("Invalid player ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid player ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	player, err := h.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Player retrieved successfully",
		"player":  player,
	})
}

// UpdatePlayer handles updating a player profile
func (h *PlayerHandler) UpdatePlayer(c echo.Context) error {
	id := c.Param("id")

	var playerID uint
	if _, err := fmt.Sscan(id, &playerID); err != nil {
		logger.Error("Invalid player ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid player ID"})
	}

	var reqUpdate PlayerUpdateRequest
	if err := c.Bind(&reqUpdate); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqUpdate); err != nil {
		logger.Error("Failed to validate player update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updateData := &domain.Player{
		FullName: reqUpdate.FullName,
		Password: reqUpdate.Password,
	}

	updatedPlayer, err := h.playerService.UpdatePlayer(ctx, playerID, updateData)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "invalid") {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Player updated successfully",
		"player":  updatedPlayer,
	})
}

// UpdateSegment handles reclassifying a player, admin only
func (h *PlayerHandler) UpdateSegment(c echo.Context) error {
	id := c.Param("id")

	var playerID uint
	if _, err := fmt.Sscan(id, &playerID); err != nil {
		logger.Error("Invalid player ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid player ID"})
	}

	var req SegmentUpdateRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate segment update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.playerService.UpdateSegment(ctx, playerID, domain.Segment(req.Segment)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Segment updated successfully",
	})
}
