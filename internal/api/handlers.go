package api

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"casaora/server/config"
	"casaora/server/internal/analytics"
	"casaora/server/internal/database"
	"casaora/server/internal/models"
	"casaora/server/internal/queue"
)

type Handler struct {
	db           *database.Database
	logger       *logrus.Logger
	queue        *queue.RecordQueue
	maxBatchSize int
}

// RowFilters are the caller-supplied portfolio filters
type RowFilters struct {
	Query  string `form:"q"`
	Status string `form:"status,default=all"`
	Health string `form:"health,default=all"`
}

func NewHandler(db *database.Database, recordQueue *queue.RecordQueue, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	maxBatchSize := cfg.BatchProcessing.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}

	return &Handler{
		db:           db,
		logger:       logger,
		queue:        recordQueue,
		maxBatchSize: maxBatchSize,
	}
}

// buildRows loads the current snapshot and runs the analytics engine over it.
func (h *Handler) buildRows(now time.Time) ([]models.PortfolioRow, error) {
	data, err := h.db.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	return analytics.BuildPortfolioRows(analytics.SnapshotInput{
		Properties:  data.Properties,
		Units:       data.Units,
		Leases:      data.Leases,
		Tasks:       data.Tasks,
		Collections: data.Collections,
		Index:       analytics.BuildRelationIndex(data.Units, data.Leases),
		Now:         now,
	}), nil
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	var filters RowFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.logger.WithError(err).Error("Failed to parse portfolio filters")
	}

	rows, err := h.buildRows(time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build portfolio rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build portfolio rows"})
		return
	}

	c.JSON(http.StatusOK, analytics.FilterPortfolioRows(rows, filters.Query, filters.Status, filters.Health))
}

func (h *Handler) GetPortfolioSummary(c *gin.Context) {
	var filters RowFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.logger.WithError(err).Error("Failed to parse portfolio filters")
	}

	rows, err := h.buildRows(time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build portfolio summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build portfolio summary"})
		return
	}

	filtered := analytics.FilterPortfolioRows(rows, filters.Query, filters.Status, filters.Health)
	c.JSON(http.StatusOK, analytics.BuildPortfolioSummary(filtered))
}

func (h *Handler) GetLatestSnapshot(c *gin.Context) {
	snapshot, err := h.db.GetLatestPortfolioSnapshot()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get latest snapshot"})
		return
	}

	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot available yet"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ImportRecords accepts a JSON array of records for one entity and queues
// it for ingestion. Oversized payloads are split into queue-sized batches.
func (h *Handler) ImportRecords(c *gin.Context) {
	entity := c.Param("entity")
	if _, ok := models.RecordEntities[entity]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown record entity: " + entity})
		return
	}

	var records []models.Record
	if err := c.ShouldBindJSON(&records); err != nil {
		h.logger.WithError(err).Error("Failed to parse import payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON array of records"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty record batch"})
		return
	}

	queued := 0
	for start := 0; start < len(records); start += h.maxBatchSize {
		end := start + h.maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		err := h.queue.Push(&models.RecordBatch{Entity: entity, Records: records[start:end]})
		if err != nil {
			h.logger.WithError(err).WithField("entity", entity).Error("Failed to queue record batch")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":  "Ingestion queue is not accepting batches",
				"queued": queued,
			})
			return
		}
		queued += end - start
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"entity": entity,
		"count":  queued,
	})
}
