package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/asing407/foodie-barcart/config"
	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/middlewares"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/router"
	"github.com/asing407/foodie-barcart/utils"
)

func main() {
	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	stripeCfg := config.LoadStripeConfig()
	if err := stripeCfg.Validate(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid Stripe configuration: %v", err)
	}
	stripeSvc := gateway.NewStripeService(stripeCfg)

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, stripeSvc)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusUpdate{},
		&models.PaymentConfirmation{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
