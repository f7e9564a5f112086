package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/asing407/foodie-barcart/config"
	"github.com/asing407/foodie-barcart/controllers"
	"github.com/asing407/foodie-barcart/middlewares"
	"github.com/asing407/foodie-barcart/services"
	"github.com/asing407/foodie-barcart/store"
)

// SetupRouter wires the HTTP surface. The payment gateway is passed in
// so tests can substitute a double.
func SetupRouter(db *gorm.DB, gw services.PaymentGateway) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	orderStore := store.NewOrderStore(db)
	checkoutSvc := services.NewCheckoutService(orderStore, gw)
	reconcilerSvc := services.NewReconcilerService(orderStore, gw)
	emailSvc := services.NewEmailService(config.LoadResendConfig())

	userCtrl := controllers.NewUserController(db)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc)
	webhookCtrl := controllers.NewWebhookController(reconcilerSvc)
	orderCtrl := controllers.NewOrderController(orderStore, emailSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Stripe calls this; authentication is the signature header.
	r.POST("/webhooks/stripe", webhookCtrl.HandleStripeWebhook)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/checkout", checkoutCtrl.CreateCheckout)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.GET("/orders/:order_id/status", orderCtrl.GetOrderStatus)
		auth.POST("/orders/:order_id/confirmation-email", orderCtrl.SendConfirmationEmail)
	}

	return r
}
