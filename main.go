package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"tradesim/config"
	"tradesim/database"
	"tradesim/handlers"
	"tradesim/middleware"
	"tradesim/quotes"
	"tradesim/sessions"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	store := sessions.New(rdb, cfg.SessionTTL)
	quoteClient := quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey)
	h := handlers.New(db, quoteClient, store, cfg, log)

	router := gin.Default()
	h.Routes(router, middleware.Auth(store, cfg.JWTSecret))

	log.Info("Listening on :", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped: ", err)
	}
}
