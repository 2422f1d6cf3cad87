package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureFoodIndexes(db); err != nil {
		log.Printf("⚠️ food index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	provider := payment.NewRedirectProvider(config.AppEnv.FrontendURL)

	r := gin.Default()
	r.Use(cors.Default())
	r.Static("/uploads", "./public/uploads")

	r.GET("/", func(c *gin.Context) {
		c.String(200, "API working")
	})

	r.POST("/api/user/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/api/user/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/api/food/list", handlers.ListFood(db))

	cart := r.Group("/api/cart")
	cart.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		cart.POST("/add", handlers.AddToCart(db))
		cart.POST("/remove", handlers.RemoveFromCart(db))
		cart.POST("/get", handlers.GetCart(db))
	}

	r.POST("/api/order/place", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.PlaceOrder(db, provider))
	r.POST("/api/order/verify", handlers.VerifyOrder(db))
	r.POST("/api/order/userorders", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.UserOrders(db))

	admin := r.Group("/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.POST("/food/add", handlers.AddFood(db))
		admin.POST("/food/remove", handlers.RemoveFood(db))
		admin.GET("/order/list", handlers.ListOrders(db))
		admin.POST("/order/status", handlers.UpdateStatus(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	r.Run(":" + port)
}
