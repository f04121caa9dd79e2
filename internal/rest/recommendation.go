package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"playerEngagement/business/bonus"
	"playerEngagement/business/recommendation"
	"playerEngagement/domain"
	"playerEngagement/pkg/logger"
	"playerEngagement/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		recs     RecommendationService
	}

	RecommendationService interface {
		GetLatest(ctx context.Context, playerID uint) (domain.Recommendation, error)
		Generate(ctx context.Context, playerID uint) (domain.Recommendation, error)
		GetGameRecommendations(ctx context.Context, playerID uint, count int) ([]domain.GameRecommendation, error)
		GetBonusRecommendation(ctx context.Context, playerID uint) (domain.BonusRecommendation, error)
		RecordDisplayed(ctx context.Context, recommendationID uint) error
		RecordClicked(ctx context.Context, recommendationID uint) error
		RecordAccepted(ctx context.Context, recommendationID uint) error
	}

	GameRecommendationQuery struct {
		N int `query:"n"`
	}
)

func NewRecommendationHandler(recs RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		recs:     recs,
	}
}

// GET /api/v1/recommendations
func (h *RecommendationHandler) GetLatest(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	metrics.RecommendationRequests.Inc()
	timer := prometheus.NewTimer(metrics.RecommendationLatency)
	defer timer.ObserveDuration()

	rec, err := h.recs.GetLatest(c.Request().Context(), playerID)
	if err != nil {
		logger.Error("failed to get latest recommendation", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rec))
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Generate(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	rec, err := h.recs.Generate(c.Request().Context(), playerID)
	if err != nil {
		logger.Error("failed to generate recommendation", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rec))
}

// GET /api/v1/recommendations/games?n=5
func (h *RecommendationHandler) GetGameRecommendations(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q GameRecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	games, err := h.recs.GetGameRecommendations(c.Request().Context(), playerID, q.N)
	if err != nil {
		logger.Error("failed to get game recommendations", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(games))
}

// GET /api/v1/recommendations/bonus
func (h *RecommendationHandler) GetBonusRecommendation(c echo.Context) error {
	playerID, ok := c.Get("player_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	rec, err := h.recs.GetBonusRecommendation(c.Request().Context(), playerID)
	if errors.Is(err, bonus.ErrNoBonusAvailable) {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
			"available": false,
		}))
	}
	if err != nil {
		logger.Error("failed to get bonus recommendation", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"available":      true,
		"recommendation": rec,
	}))
}

// recordEvent handles the three lifecycle latch endpoints.
func (h *RecommendationHandler) recordEvent(c echo.Context, record func(context.Context, uint) error) error {
	recID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation ID"})
	}

	if err := record(c.Request().Context(), uint(recID)); err != nil {
		if errors.Is(err, recommendation.ErrRecommendationNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("failed to record recommendation event", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("recorded"))
}

// POST /api/v1/recommendations/:id/displayed
func (h *RecommendationHandler) RecordDisplayed(c echo.Context) error {
	return h.recordEvent(c, h.recs.RecordDisplayed)
}

// POST /api/v1/recommendations/:id/clicked
func (h *RecommendationHandler) RecordClicked(c echo.Context) error {
	return h.recordEvent(c, h.recs.RecordClicked)
}

// POST /api/v1/recommendations/:id/accepted
func (h *RecommendationHandler) RecordAccepted(c echo.Context) error {
	return h.recordEvent(c, h.recs.RecordAccepted)
}
