package routes

import (
	"net/http"

	"github.com/gildgrove/gildgrove-golang/internal/handlers"
	"github.com/gildgrove/gildgrove-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the storefront and back-office SPAs (vite dev
// server) to talk to this API with JWT Authorization headers.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.POST("/auth/forgot-password", h.ForgotPassword)
		v1.POST("/auth/reset-password", h.ResetPassword)

		// --- Storefront Catalog (Public) ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:slug", h.GetProductBySlug)
		v1.GET("/products/:slug/reviews", h.ListProductReviews)
		v1.GET("/categories", h.GetAllCategories)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			// --- Profile ---
			auth.GET("/profile/me", h.GetMyProfile)
			auth.PUT("/profile/me", h.UpdateMyProfile)

			// --- Cart ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.PUT("/cart/items/:item_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:item_id", h.DeleteCartItem)

			// --- Checkout ---
			auth.POST("/checkout/quote", h.QuoteCheckout)
			auth.POST("/checkout", h.Checkout)

			// --- Orders ---
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.POST("/orders/:id/pay", h.PayOrder)
			auth.POST("/orders/:id/cancel", h.CancelOrder)
			auth.POST("/orders/:id/complete", h.ConfirmReceipt)
			auth.POST("/orders/:id/refund-request", h.RequestRefund)

			// --- Vouchers ---
			auth.GET("/vouchers", h.GetClaimableVouchers)
			auth.POST("/vouchers/:id/claim", h.ClaimVoucher)

			// --- Reviews ---
			auth.POST("/reviews/products/:id", h.CreateReview)

			// --- Notifications ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			// --- Catalog Management ---
			admin.GET("/products", h.GetAdminProducts)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/categories", h.CreateCategory)

			// --- Order Management ---
			admin.GET("/orders", h.GetAdminOrders)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

			// --- Voucher Management ---
			admin.GET("/vouchers", h.GetAdminVouchers)
			admin.POST("/vouchers", h.CreateVoucher)
			admin.PUT("/vouchers/:id", h.UpdateVoucher)
			admin.DELETE("/vouchers/:id", h.DeleteVoucher)

			// --- Customer Management ---
			admin.GET("/customers", h.GetCustomers)
			admin.PATCH("/customers/:id/status", h.SetCustomerStatus)

			// --- Dashboard ---
			admin.GET("/dashboard", h.GetDashboardStats)
			admin.GET("/dashboard/revenue", h.GetRevenueChart)
			admin.GET("/dashboard/stock-alerts", h.GetStockAlerts)

			// --- AI Assistant ---
			admin.POST("/ai/chat", h.ChatAI)
		}
	}

	return router
}
