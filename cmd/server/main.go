package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"checkspot/internal/config"
	"checkspot/internal/database"
	"checkspot/internal/handler"
	"checkspot/internal/logger"
	"checkspot/internal/queue"
	"checkspot/internal/repository"
	"checkspot/internal/router"
	"checkspot/internal/validation"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()
	log := logger.New("checkspot-api")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := database.Migrate(db, cfg.DBName); err != nil {
		log.WithError(err).Fatal("database migrate failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	activities := repository.NewActivityRepo(db)
	checkins := repository.NewCheckinRepo(db)
	payouts := repository.NewPayoutRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	router.Register(e, cfg, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Venues:   handler.NewVenueHandler(venues),
		Activity: handler.NewActivityHandler(activities, venues),
		Checkins: handler.NewCheckinHandler(checkins, venues, log),
		Payouts:  handler.NewPayoutHandler(payouts, venues),
	}, rdb)

	// Audit consumer for checkin.recorded events; reconnects on its own.
	go func() {
		if err := queue.StartCheckinConsumer(log); err != nil {
			log.WithError(err).Error("checkin consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.WithField("env", cfg.Env).Infof("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
