package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"aginventory/pkg/config"
	"aginventory/pkg/database"
	"aginventory/pkg/inventory"
	"aginventory/pkg/logger"
	"aginventory/pkg/mailer"
	"aginventory/pkg/reservation"
	"aginventory/pkg/token"
)

var (
	db     *gorm.DB
	cfg    *config.Config
	log    *logrus.Logger
	tokens *token.Manager
	mail   reservation.Notifier
	invSvc *inventory.Service
	resSvc *reservation.Service
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log = logger.New(cfg.LogLevel)

	log.Println("Starting inventory service...")

	db, err = database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	tokens = token.NewManager(cfg.JWTSecret, cfg.SecuritySalt)
	mail = mailer.New(cfg)
	invSvc = inventory.NewService(db)
	resSvc = reservation.NewService(db, mail)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.Default()
	registerRoutes(server)

	log.Printf("Inventory service starting on :%s", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func registerRoutes(server *gin.Engine) {
	server.GET("/manage/health", healthCheck)
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := server.Group("/api/v1")
	api.POST("/register", register)
	api.POST("/login", login)
	api.GET("/confirm_email/:token", confirmEmail)
	api.POST("/send_reset_email", sendResetEmail)
	api.POST("/reset_password/:token", resetPassword)

	member := api.Group("", authRequired)
	member.POST("/logout", logout)

	member.GET("/items", listItems)
	member.GET("/units", listUnits)
	member.GET("/units/:id/items", listItemsByUnit)
	member.GET("/units/:id/shelves", listShelves)
	member.GET("/shelves/:id/items", listItemsByShelf)
	member.GET("/shelves/:id/containers", listContainersByShelf)
	member.GET("/containers", listContainers)
	member.GET("/containers/:id/items", listItemsByContainer)
	member.GET("/brothers", listBrothers)

	member.GET("/reservations", listReservations)
	member.POST("/reservations", createReservation)
	member.PUT("/reservations/:id", editReservation)
	member.DELETE("/reservations/:id", deleteReservation)

	admin := member.Group("", requireAdmin)
	admin.POST("/items", createItem)
	admin.PUT("/items/:id", editItem)
	admin.DELETE("/items/:id", deleteItem)
	admin.POST("/items/:id/assign_unit", assignUnitToItem)
	admin.POST("/items/:id/assign_shelf", assignShelfToItem)
	admin.POST("/items/:id/assign_container", assignContainerToItem)
	admin.POST("/items/:id/remove_container", removeItemFromContainer)

	admin.POST("/units", createUnit)
	admin.PUT("/units/:id", editUnit)
	admin.DELETE("/units/:id", deleteUnit)
	admin.POST("/units/:id/shelves", createShelf)
	admin.PUT("/shelves/:id", editShelf)
	admin.DELETE("/shelves/:id", deleteShelf)
	admin.POST("/containers", createContainer)
	admin.PUT("/containers/:id", editContainer)
	admin.DELETE("/containers/:id", deleteContainer)
	admin.POST("/containers/:id/assign_unit", assignUnitToContainer)
	admin.POST("/containers/:id/assign_shelf", assignShelfToContainer)

	admin.POST("/reservations/:id/approve", approveReservation)
	admin.POST("/reservations/:id/revoke", revokeReservation)

	admin.POST("/brothers/:id/grant_admin", grantAdmin)
	admin.POST("/brothers/:id/revoke_admin", revokeAdmin)
	admin.DELETE("/brothers/:id", removeBrother)

	admin.POST("/maintenance/repair", repairHierarchy)
}

func healthCheck(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
