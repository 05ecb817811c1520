package main

import (
	"time"

	log "github.com/sirupsen/logrus"

	"materiaux-pro/config"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database"
	"materiaux-pro/internal/server"
	"materiaux-pro/internal/service"
	"materiaux-pro/internal/storage"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	redisClient, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	defer redisClient.Close()

	sessionTTL := time.Duration(cfg.Session.TTLDays) * 24 * time.Hour
	sessions := auth.NewSessionManager(
		auth.NewRedisSessionStore(redisClient),
		[]byte(cfg.Session.Secret),
		sessionTTL,
	)

	store := storage.New(db)

	router := server.NewRouter(server.Services{
		Sessions:  sessions,
		Accounts:  service.NewAccountService(store, sessions),
		Catalog:   service.NewCatalogService(store),
		Orders:    service.NewOrderService(store),
		Quotes:    service.NewQuoteService(store),
		Favorites: service.NewFavoriteService(store),
		Stats:     service.NewStatsService(store),
	})

	log.WithField("port", cfg.Server.Port).Info("starting server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
