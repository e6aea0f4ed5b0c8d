package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/drawit-cms/drawit-go/api"
	"github.com/drawit-cms/drawit-go/cache"
	"github.com/drawit-cms/drawit-go/config"
	"github.com/drawit-cms/drawit-go/store"
)

var GlobalCacheManager *cache.Manager

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	cfg := config.Load()

	// Initialize global cache manager
	GlobalCacheManager = cache.NewManager()
	if GlobalCacheManager == nil {
		log.Fatal("Failed to create cache manager")
	}
	log.Println("Global cache manager initialized")

	// Start cleanup routine
	cache.StartCleanupRoutine(GlobalCacheManager)

	db, err := store.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Printf("Database ready: %s", db.GetConnectionInfo())

	app := api.NewApp(cfg, db, GlobalCacheManager)

	r := gin.New()
	r.Use(api.FilteredLogger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"}) // Add IPv6 support

	// Configure CORS to allow localhost origins (including IPv6)
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://[::1]:3000", // IPv6 localhost
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type",
		},
	}))

	// Uploaded files are served straight off disk.
	r.Static("/uploads", cfg.UploadsPath)

	// Authentication and system routes
	r.POST("/api/v1/auth/login", app.LoginHandler)
	r.GET("/api/v1/health", app.HealthHandler(db))

	v1 := r.Group("/api/v1")
	{
		diagrams := v1.Group("/diagrams")
		{
			diagrams.POST("/save", app.SaveDiagramHandler)
			diagrams.GET("/:id", app.GetDiagramHandler)
			diagrams.GET("/:id/render", app.RenderDiagramHandler)
		}

		// Shortcode expansion over arbitrary content
		v1.POST("/render", app.RenderContentHandler)

		// Nonces are minted inside the editor surface, so it carries the
		// same guard as the settings routes.
		editor := v1.Group("/editor")
		editor.Use(app.AdminRequired())
		{
			editor.GET("", app.EditorPageHandler)
			editor.GET("/ws", app.EditorWSHandler)
			editor.GET("/nonce", app.NonceHandler)
		}

		admin := v1.Group("/admin")
		admin.Use(app.AdminRequired())
		{
			admin.GET("/options", app.GetOptionsHandler)
			admin.PUT("/options", app.UpdateOptionsHandler)
			admin.GET("/mime-types", app.MimeTypesHandler)
		}
	}

	log.Printf("Starting server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
