package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"foodi/api/middleware"
	"foodi/api/routes"
	"foodi/config"
	"foodi/db"
	"foodi/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	if err := db.CreateLeaderboardIndexes(db.ORM); err != nil {
		log.Println("Warning: failed to create leaderboard indexes:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis и RabbitMQ опциональны: без них сервис работает напрямую из БД
	if err := services.InitRedis(); err != nil {
		log.Println("Warning: Redis unavailable, feed caching disabled:", err)
	} else if services.QueueServiceInstance != nil {
		services.QueueServiceInstance.StartWorkers(ctx)
	}

	if err := services.InitRabbitMQ(); err != nil {
		log.Println("Warning: RabbitMQ unavailable, live feed push disabled:", err)
	} else {
		if err := services.StartFeedEventConsumer(ctx, "feed_push_queue"); err != nil {
			log.Println("Warning: failed to start feed event consumer:", err)
		}
	}
	defer services.CloseRabbitMQ()
	defer services.CloseRedis()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("foodi"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.PublicApi(router)
	routes.AuthorizedApi(router, middleware.AuthMiddleware())

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	if config.AppConfig.Backend.Port == 0 {
		addr = ":8080"
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
