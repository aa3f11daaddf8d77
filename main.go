package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/controllers"
	"github.com/utilink-app/dossier-api/middleware"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/services"
)

func main() {
	logrus.Info("Starting dossier API server...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Dossier{},
		&models.Document{},
		&models.StatusHistoryEntry{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	logrus.Info("Database migration completed")

	if _, err := services.InitStorageService(); err != nil {
		logrus.Fatalf("Failed to initialize document storage: %v", err)
	}
	services.InitStatsCache()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(cfg))
		{
			authenticated.POST("/users", controllers.CreateUser)
			authenticated.GET("/users/me", controllers.GetMyProfile)

			authenticated.POST("/dossiers", controllers.CreateDossier)
			authenticated.GET("/dossiers", controllers.ListDossiers)
			authenticated.GET("/dossiers/:id", controllers.GetDossier)
			authenticated.PATCH("/dossiers/:id", controllers.UpdateDossier)
			authenticated.POST("/dossiers/:id/advance", controllers.AdvanceDossier)
			authenticated.PUT("/dossiers/:id/status", controllers.SetDossierStatus)
			authenticated.GET("/dossiers/:id/history", controllers.ListDossierHistory)

			authenticated.POST("/dossiers/:id/documents", controllers.UploadDocument)
			authenticated.GET("/dossiers/:id/documents", controllers.ListDocuments)
			authenticated.GET("/documents/:id/url", controllers.GetDocumentURL)

			authenticated.GET("/dashboard/stats", controllers.GetDashboardStats)
		}
	}

	addr := ":" + cfg.Port
	logrus.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dossier API is running",
	})
}
