package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/cart"
	"backend/internal/checkout"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/orders"
	"backend/internal/ws"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.SeedProducts(db); err != nil {
		log.Printf("catalog seed warning: %v", err)
	}

	bus := cart.NewBus()
	hub := ws.NewHub()
	store := cart.NewStore(cart.NewMongoRepository(db), bus)

	// Every cart mutation fans out to all of the owner's surfaces.
	bus.SubscribeCartChanged(func(event cart.CartChanged) {
		hub.BroadcastCart(event.Owner, event.Lines)
	})

	orderRepo := orders.NewMongoRepository(db)
	orderService := orders.NewService(orderRepo)
	tracker := orders.NewTracker()
	workflow := checkout.NewWorkflow(store, orderRepo)
	storeMetrics := metrics.NewStoreMetrics()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Cart-Token"},
		ExposeHeaders:    []string{"Content-Length", "X-Cart-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/refresh", handlers.Refresh(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))
	r.GET("/auth/me/profile", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetProfileStatus(db))
	r.PUT("/auth/me/profile", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.CompleteProfile(db))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))

	// Cart routes serve anonymous and logged-in shoppers alike, but the
	// cart must key to the account when one is known, or checkout would
	// read a different cart than the one the shopper filled.
	shop := r.Group("", middleware.OptionalUserAuth(config.AppEnv.JWTSecret))
	{
		shop.GET("/cart", handlers.GetCart(store))
		shop.POST("/cart/items", handlers.AddCartLine(db, store))
		shop.PUT("/cart/items/:index", handlers.UpdateCartLine(store))
		shop.DELETE("/cart/items/:index", handlers.RemoveCartLine(store))
		shop.GET("/ws/cart", handlers.CartFeed(hub))
	}

	r.POST("/checkout", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.Checkout(db, store, workflow, hub, storeMetrics))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/orders", handlers.GetAdminOrders(orderService, tracker))
		admin.GET("/orders/stats", handlers.GetOrderStats(orderService))
		admin.GET("/orders/export", handlers.ExportOrders(orderService))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(orderService, storeMetrics))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderService))
		admin.GET("/orders/feed", handlers.OrderFeed(hub))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
