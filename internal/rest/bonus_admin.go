package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"playerEngagement/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	BonusAdminHandler struct {
		validate *validator.Validate
		bonuses  BonusAdminService
	}

	BonusAdminService interface {
		CreateBonus(ctx context.Context, bonus *domain.Bonus) error
		UpdateBonus(ctx context.Context, bonus *domain.Bonus) error
		DeactivateBonus(ctx context.Context, bonusID uint64) error
	}

	BonusUpsertRequest struct {
		Name                string    `json:"name" validate:"required"`
		Type                string    `json:"type" validate:"required,oneof=deposit_match reload free_spins no_deposit cashback"`
		Amount              float64   `json:"amount" validate:"gte=0"`
		TargetSegments      []string  `json:"target_segments" validate:"dive,oneof=new regular vip dormant"`
		ApplicableGameIDs   []uint64  `json:"applicable_game_ids"`
		MinimumDeposit      *float64  `json:"minimum_deposit,omitempty" validate:"omitempty,gt=0"`
		WageringRequirement *float64  `json:"wagering_requirement,omitempty" validate:"omitempty,gte=0"`
		ValidFrom           time.Time `json:"valid_from"`
		ValidUntil          time.Time `json:"valid_until"`
	}
)

func NewBonusAdminHandler(bonuses BonusAdminService) *BonusAdminHandler {
	return &BonusAdminHandler{
		validate: validator.New(),
		bonuses:  bonuses,
	}
}

func (r BonusUpsertRequest) toDomain() domain.Bonus {
	segments := make([]domain.Segment, 0, len(r.TargetSegments))
	for _, s := range r.TargetSegments {
		segments = append(segments, domain.Segment(s))
	}

	return domain.Bonus{
		Name:                r.Name,
		Type:                domain.BonusType(r.Type),
		Amount:              r.Amount,
		TargetSegments:      datatypes.NewJSONSlice(segments),
		ApplicableGameIDs:   datatypes.NewJSONSlice(r.ApplicableGameIDs),
		MinimumDeposit:      r.MinimumDeposit,
		WageringRequirement: r.WageringRequirement,
		IsActive:            true,
		ValidFrom:           r.ValidFrom,
		ValidUntil:          r.ValidUntil,
	}
}

// POST /api/v1/admin/bonuses
func (h *BonusAdminHandler) CreateBonus(c echo.Context) error {
	var req BonusUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	b := req.toDomain()
	if err := h.bonuses.CreateBonus(c.Request().Context(), &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, b)
}

// PUT /api/v1/admin/bonuses/:id
func (h *BonusAdminHandler) UpdateBonus(c echo.Context) error {
	bonusID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid bonus ID",
		})
	}

	var req BonusUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	b := req.toDomain()
	b.ID = bonusID
	if err := h.bonuses.UpdateBonus(c.Request().Context(), &b); err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

// DELETE /api/v1/admin/bonuses/:id
func (h *BonusAdminHandler) DeactivateBonus(c echo.Context) error {
	bonusID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid bonus ID",
		})
	}

	if err := h.bonuses.DeactivateBonus(c.Request().Context(), bonusID); err != nil {
		return bonusErrorJSON(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
