package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"casaora/server/config"
	"casaora/server/internal/database"
	"casaora/server/internal/queue"
)

func SetupRoutes(router *gin.Engine, db *database.Database, recordQueue *queue.RecordQueue, cfg *config.Config, logger *logrus.Logger) {
	handler := NewHandler(db, recordQueue, cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/portfolio", handler.GetPortfolio)
		api.GET("/portfolio/summary", handler.GetPortfolioSummary)
		api.GET("/snapshots/latest", handler.GetLatestSnapshot)
		api.POST("/import/:entity", handler.ImportRecords)
	}
}
