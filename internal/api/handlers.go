package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentwatch/server/internal/database"
	"rentwatch/server/internal/ingest"
)

type Handler struct {
	db      *database.Database
	manager *ingest.Manager
	logger  *logrus.Logger
}

func NewHandler(db *database.Database, manager *ingest.Manager, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{
		db:      db,
		manager: manager,
		logger:  logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListListings returns the current snapshot rows, optionally filtered by
// neighborhood.
func (h *Handler) ListListings(c *gin.Context) {
	neighborhood := c.Query("neighborhood")
	listings, err := h.db.ListListings(neighborhood)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetListingHistory returns the price observations of one listing ordered
// by capture time.
func (h *Handler) GetListingHistory(c *gin.Context) {
	listingID := c.Param("id")
	history, err := h.db.GetListingHistory(listingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing history"})
		return
	}
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No history for listing " + listingID})
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetNeighborhoodDailyAverage returns daily average prices for one
// neighborhood, optionally restricted to furnished or unfurnished units.
func (h *Handler) GetNeighborhoodDailyAverage(c *gin.Context) {
	name := c.Param("name")

	var furnished *bool
	if raw := c.Query("furnished"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "furnished must be true or false"})
			return
		}
		furnished = &value
	}

	averages, err := h.db.GetNeighborhoodDailyAverage(name, furnished)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get daily averages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get daily averages"})
		return
	}
	c.JSON(http.StatusOK, averages)
}

// TriggerCollect starts a capture run in the background. Runs are
// serialized by the manager, so a trigger during a scheduled run simply
// queues behind it.
func (h *Handler) TriggerCollect(c *gin.Context) {
	go func() {
		if _, err := h.manager.RunOnce(); err != nil {
			h.logger.WithError(err).Error("Manual capture run failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "collection started"})
}
