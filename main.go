package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/orders"
	"backend/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatalln("[MAIN] [FATAL] mongo connection failed:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Println("[MAIN] [WARN] mongo disconnect failed:", err)
		}
	}()

	db := client.Database(config.AppEnv.DBName)

	if err := database.EnsureOfferIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] offer indexes:", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] user indexes:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] order indexes:", err)
	}
	if err := database.EnsureAdminUser(db, config.AppEnv.AdminUsername, config.AppEnv.AdminPassword); err != nil {
		log.Println("[MAIN] [WARN] admin seed:", err)
	}

	mongoStore := store.NewMongo(db)
	engine := orders.NewEngine(mongoStore, mongoStore, mongoStore)

	jwtSecret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL

	r := gin.Default()
	r.Use(cors.Default())

	api := r.Group("/api")
	{
		api.POST("/login", handlers.Login(db, jwtSecret, accessTTL))
		api.POST("/register", handlers.Register(db, jwtSecret, accessTTL))
		api.GET("/verify", middleware.AuthGuard(jwtSecret), handlers.Verify(db))

		api.GET("/products", handlers.GetProducts(db))
		api.GET("/products/:id", handlers.GetProduct(db))

		api.POST("/orders", handlers.CreateOrder(engine))
		api.GET("/orders", handlers.GetOrders(db))
		api.GET("/orders/:id", handlers.GetOrder(db))

		api.GET("/offers", handlers.GetOffers(db))
		api.GET("/offers/:code", handlers.GetOffer(db))

		api.GET("/testimonials", handlers.GetTestimonials(db))
		api.POST("/testimonials", handlers.CreateTestimonial(db))

		api.POST("/callback-requests", handlers.CreateCallback(db))
	}

	admin := api.Group("", middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/admin/stats", handlers.GetStats(db))

		admin.POST("/users", handlers.CreateUser(db))
		admin.GET("/users", handlers.GetUsers(db))
		admin.PUT("/users/:id", handlers.UpdateUser(db))
		admin.DELETE("/users/:id", handlers.DeleteUser(db))

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.PUT("/orders/:id", handlers.UpdateOrderStatus(db))

		admin.POST("/offers", handlers.CreateOffer(db))
		admin.PUT("/offers/:id", handlers.UpdateOffer(db))
		admin.DELETE("/offers/:id", handlers.DeleteOffer(db))

		admin.PUT("/testimonials/:id", handlers.UpdateTestimonial(db))
		admin.DELETE("/testimonials/:id", handlers.DeleteTestimonial(db))

		admin.GET("/callback-requests", handlers.GetCallbacks(db))
		admin.PUT("/callback-requests/:id", handlers.UpdateCallback(db))
	}

	log.Println("[MAIN] [INFO] listening on port", config.AppEnv.Port)
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatalln("[MAIN] [FATAL] server stopped:", err)
	}
}
