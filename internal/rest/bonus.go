package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"playerEngagement/business/bonus"
	"playerEngagement/domain"
	"playerEngagement/pkg/logger"
	"playerEngagement/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	BonusHandler struct {
		validate     *validator.Validate
		bonusService BonusService
	}

	BonusService interface {
		GetBonus(ctx context.Context, bonusID uint64) (domain.Bonus, error)
		ListActiveBonuses(ctx context.Context) ([]domain.Bonus, error)
		ListBonusesByType(ctx context.Context, bonusType domain.BonusType) ([]domain.Bonus, error)
		ListBonusesForSegment(ctx context.Context, segment domain.Segment) ([]domain.Bonus, error)
		ListBonusesForGame(ctx context.Context, gameID uint64) ([]domain.Bonus, error)
		ListPlayerBonusClaims(ctx context.Context, playerID uint) ([]domain.BonusClaim, error)
		ClaimBonus(ctx context.Context, playerID uint, bonusID uint64) (domain.BonusClaim, error)
		ConfirmDeposit(ctx context.Context, claimID uint, amount float64) (domain.BonusClaim, error)
		UpdateWageringProgress(ctx context.Context, claimID uint, newProgress float64) (domain.BonusClaim, error)
		RankBonuses(ctx context.Context, playerID uint) ([]domain.ScoredBonus, error)
		GetOptimalBonus(ctx context.Context, playerID uint) (domain.BonusRecommendation, error)
		IsBonusAppropriate(ctx context.Context, playerID uint, bonusID uint64) (bool, error)
	}

	ClaimBonusRequest struct {
		BonusID uint64 `json:"bonus_id" validate:"required"`
	}

	ConfirmDepositRequest struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}

	WageringProgressRequest struct {
		Progress float64 `json:"progress" validate:"gte=0"`
	}
)

func NewBonusHandler(svc BonusService) *BonusHandler {
	return &BonusHandler{
		validate:     validator.New(),
		bonusService: svc,
	}
}

// bonusErrorJSON maps service errors onto HTTP responses. Rule rejections are
// expected outcomes and come back as 409, not 5xx.
func bonusErrorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, bonus.ErrBonusNotFound),
		errors.Is(err, bonus.ErrClaimNotFound),
		errors.Is(err, bonus.ErrPlayerNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case bonus.IsRejection(err):
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	default:
		logger.Error("bonus request failed", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}

// GET /api/v1/bonuses/:id
func (h *BonusHandler) GetBonus(c echo.Context) error {
	bonusID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid bonus ID"})
	}

	b, err := h.bonusService.GetBonus(c.Request().Context(), bonusID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(b))
}

// GET /api/v1/bonuses
func (h *BonusHandler) ListActiveBonuses(c echo.Context) error {
	bonuses, err := h.bonusService.ListActiveBonuses(c.Request().Context())
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(bonuses))
}

// GET /api/v1/bonuses/type/:type
func (h *BonusHandler) ListBonusesByType(c echo.Context) error {
	bonusType := domain.BonusType(c.Param("type"))
	if !bonusType.Valid() {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid bonus type"})
	}

	bonuses, err := h.bonusService.ListBonusesByType(c.Request().Context(), bonusType)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(bonuses))
}

// GET /api/v1/bonuses/segment/:segment
func (h *BonusHandler) ListBonusesForSegment(c echo.Context) error {
	segment := domain.Segment(c.Param("segment"))
	if !segment.Valid() {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid segment"})
	}

	bonuses, err := h.bonusService.ListBonusesForSegment(c.Request().Context(), segment)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(bonuses))
}

// GET /api/v1/bonuses/game/:gameId
func (h *BonusHandler) ListBonusesForGame(c echo.Context) error {
	gameID, err := strconv.ParseUint(c.Param("gameId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid game ID"})
	}

	bonuses, err := h.bonusService.ListBonusesForGame(c.Request().Context(), gameID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(bonuses))
}

// GET /api/v1/players/me/claims
func (h *BonusHandler) ListMyClaims(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	claims, err := h.bonusService.ListPlayerBonusClaims(c.Request().Context(), playerID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(claims))
}

// POST /api/v1/bonuses/claims
func (h *BonusHandler) ClaimBonus(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ClaimBonusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	claim, err := h.bonusService.ClaimBonus(c.Request().Context(), playerID, req.BonusID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(claim))
}

// POST /api/v1/bonuses/claims/:id/deposit
func (h *BonusHandler) ConfirmDeposit(c echo.Context) error {
	claimID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid claim ID"})
	}

	var req ConfirmDepositRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	claim, err := h.bonusService.ConfirmDeposit(c.Request().Context(), uint(claimID), req.Amount)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(claim))
}

// PUT /api/v1/bonuses/claims/:id/wagering
func (h *BonusHandler) UpdateWageringProgress(c echo.Context) error {
	claimID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid claim ID"})
	}

	var req WageringProgressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	claim, err := h.bonusService.UpdateWageringProgress(c.Request().Context(), uint(claimID), req.Progress)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(claim))
}

// GET /api/v1/bonuses/ranked
func (h *BonusHandler) RankBonuses(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	timer := prometheus.NewTimer(metrics.BonusRankLatency)
	defer timer.ObserveDuration()

	ranked, err := h.bonusService.RankBonuses(c.Request().Context(), playerID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ranked))
}

// GET /api/v1/bonuses/optimal
func (h *BonusHandler) GetOptimalBonus(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	optimal, err := h.bonusService.GetOptimalBonus(c.Request().Context(), playerID)
	if errors.Is(err, bonus.ErrNoBonusAvailable) {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
			"available": false,
		}))
	}
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"available":      true,
		"recommendation": optimal,
	}))
}

// GET /api/v1/bonuses/:id/appropriate
func (h *BonusHandler) IsBonusAppropriate(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	bonusID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid bonus ID"})
	}

	appropriate, err := h.bonusService.IsBonusAppropriate(c.Request().Context(), playerID, bonusID)
	if err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"bonus_id":    bonusID,
		"appropriate": appropriate,
	}))
}
