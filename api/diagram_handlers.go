package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drawit-cms/drawit-go/media"
	"github.com/drawit-cms/drawit-go/models"
)

// SaveDiagramHandler receives one diagram submission from the editor bridge.
// The response always carries HTTP 200; failures are reported in the body so
// the bridge can surface them inside the editor frame.
func (a *App) SaveDiagramHandler(c *gin.Context) {
	var req models.SaveDiagramRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusOK, models.SaveDiagramResponse{
			Success: false,
			HTML:    "Sorry, the submission could not be read.",
		})
		return
	}

	opts := a.currentOptions()
	resp := a.submissionService(opts).Save(req)
	c.JSON(http.StatusOK, resp)
}

// GetDiagramHandler returns one attachment record.
func (a *App) GetDiagramHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	att, err := a.lookupAttachment(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if att == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		return
	}

	c.JSON(http.StatusOK, att)
}

// RenderDiagramHandler expands a single attachment the same way the
// shortcode would, honoring the shortcode attribute set via query
// parameters.
func (a *App) RenderDiagramHandler(c *gin.Context) {
	attrs := models.ShortcodeAttrs{
		ID:        c.Param("id"),
		Title:     c.Query("title"),
		Class:     c.Query("class"),
		Align:     c.DefaultQuery("align", "center"),
		InlineSVG: c.DefaultQuery("inline_svg", "true"),
	}

	opts := a.currentOptions()
	rendered := a.shortcodeRenderer(opts).Render(attrs)
	c.JSON(http.StatusOK, gin.H{"html": rendered})
}

// RenderContentHandler expands every shortcode occurrence in submitted post
// content.
func (a *App) RenderContentHandler(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := a.currentOptions()
	c.JSON(http.StatusOK, gin.H{"html": a.shortcodeRenderer(opts).Expand(req.Content)})
}

// MimeTypesHandler lists the upload types currently permitted.
func (a *App) MimeTypesHandler(c *gin.Context) {
	opts := a.currentOptions()
	c.JSON(http.StatusOK, gin.H{"mimeTypes": media.AllowedMimeTypes(opts.SVGAllowed())})
}
