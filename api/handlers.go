package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drawit-cms/drawit-go/cache"
	"github.com/drawit-cms/drawit-go/config"
	"github.com/drawit-cms/drawit-go/diagram"
	"github.com/drawit-cms/drawit-go/html"
	"github.com/drawit-cms/drawit-go/media"
	"github.com/drawit-cms/drawit-go/models"
	"github.com/drawit-cms/drawit-go/store"
)

// App bundles the shared dependencies handed to every handler.
type App struct {
	Config      *config.Config
	Attachments *store.AttachmentStore
	OptionsDB   *store.OptionsStore
	Cache       *cache.Manager
	Library     *media.Library
}

// NewApp wires the handler dependencies.
func NewApp(cfg *config.Config, db *store.Database, cacheManager *cache.Manager) *App {
	return &App{
		Config:      cfg,
		Attachments: store.NewAttachmentStore(db),
		OptionsDB:   store.NewOptionsStore(db),
		Cache:       cacheManager,
		Library:     media.NewLibrary(cfg.UploadsPath, cfg.UploadsURL),
	}
}

// currentOptions loads the options record once for a request.
func (a *App) currentOptions() models.Options {
	opts, err := a.OptionsDB.Current()
	if err != nil {
		log.Printf("Failed to load options, using defaults: %v", err)
		return models.DefaultOptions()
	}
	return opts
}

// submissionService builds a submission pipeline bound to this request's
// options.
func (a *App) submissionService(opts models.Options) *diagram.Service {
	return diagram.NewService(opts, a.Attachments, a.Cache, a.Library, func(token string) bool {
		return VerifyNonce(a.Config.JWTSecret, token)
	})
}

// lookupAttachment is the cache-first attachment fetch shared by the render
// handlers.
func (a *App) lookupAttachment(id int64) (*models.Attachment, error) {
	if att, found := a.Cache.GetAttachment(id); found {
		return att, nil
	}
	att, err := a.Attachments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if att != nil {
		a.Cache.SetAttachment(att)
	}
	return att, nil
}

// shortcodeRenderer builds the renderer for this request's options.
func (a *App) shortcodeRenderer(opts models.Options) *html.ShortcodeRenderer {
	return &html.ShortcodeRenderer{
		Lookup:  a.lookupAttachment,
		Options: opts,
	}
}

// HealthHandler reports service and database status.
func (a *App) HealthHandler(db *store.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": db.GetConnectionInfo(),
		})
	}
}
