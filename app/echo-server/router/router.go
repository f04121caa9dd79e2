package router

import (
	"playerEngagement/internal/middleware"
	"playerEngagement/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupPlayerRoutes(api *echo.Group, handler *rest.PlayerHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	players := api.Group("/players")

	players.GET("/email-verification/:code", handler.VerifyEmail)
	players.POST("/register", handler.Register)
	players.POST("/login", handler.Login)

	players.POST("/logout", handler.Logout, authRequired)
	players.GET("/:id", handler.GetPlayerByID, authRequired, middleware.SelfOrAdmin())
	players.PUT("/:id", handler.UpdatePlayer, authRequired, middleware.SelfOrAdmin())
	players.PUT("/:id/segment", handler.UpdateSegment, authRequired, adminOnly)
}

func SetBonusRoutes(api *echo.Group, handler *rest.BonusHandler, authRequired echo.MiddlewareFunc) {
	bonuses := api.Group("/bonuses", authRequired)

	bonuses.GET("", handler.ListActiveBonuses)
	bonuses.GET("/ranked", handler.RankBonuses)
	bonuses.GET("/optimal", handler.GetOptimalBonus)
	bonuses.GET("/type/:type", handler.ListBonusesByType)
	bonuses.GET("/segment/:segment", handler.ListBonusesForSegment)
	bonuses.GET("/game/:gameId", handler.ListBonusesForGame)
	bonuses.GET("/:id", handler.GetBonus)
	bonuses.GET("/:id/appropriate", handler.IsBonusAppropriate)

	bonuses.POST("/claims", handler.ClaimBonus)
	bonuses.POST("/claims/:id/deposit", handler.ConfirmDeposit)
	bonuses.PUT("/claims/:id/wagering", handler.UpdateWageringProgress)

	api.GET("/players/me/claims", handler.ListMyClaims, authRequired)
}

func SetBonusAdminRoutes(api *echo.Group, handler *rest.BonusAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/bonuses", authRequired, adminOnly)

	admin.POST("", handler.CreateBonus)
	admin.PUT("/:id", handler.UpdateBonus)
	admin.DELETE("/:id", handler.DeactivateBonus)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)

	reco.GET("", handler.GetLatest)
	reco.POST("", handler.Generate)
	reco.GET("/games", handler.GetGameRecommendations)
	reco.GET("/bonus", handler.GetBonusRecommendation)
	reco.POST("/:id/displayed", handler.RecordDisplayed)
	reco.POST("/:id/clicked", handler.RecordClicked)
	reco.POST("/:id/accepted", handler.RecordAccepted)
}
