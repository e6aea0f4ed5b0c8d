package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drawit-cms/drawit-go/models"
)

// GetOptionsHandler returns the current options record with defaults
// backfilled, plus the choice lists the settings form renders from.
func (a *App) GetOptionsHandler(c *gin.Context) {
	opts, err := a.OptionsDB.Current()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"options":    opts,
		"validTypes": opts.FilteredValidTypes(),
		"tempDirs":   models.ValidTempDirs(),
	})
}

// UpdateOptionsHandler validates and persists a submitted options record.
// Unknown values are silently replaced per field, never stored.
func (a *App) UpdateOptionsHandler(c *gin.Context) {
	var input models.Options
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	stored, err := a.OptionsDB.Current()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	validated := input.Validate(stored)
	if err := a.OptionsDB.Save(validated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"options": validated})
}
