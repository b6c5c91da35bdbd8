package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/transmodal/freightdesk/internal/cache"
	"github.com/transmodal/freightdesk/internal/config"
	"github.com/transmodal/freightdesk/internal/db"
	"github.com/transmodal/freightdesk/internal/invoice"
	"github.com/transmodal/freightdesk/internal/order"
	"github.com/transmodal/freightdesk/internal/partner"
	"github.com/transmodal/freightdesk/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "freightdesk").Logger()

	log.Info().Msg("FreightDesk starting...")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	database, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	var summaryCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, falling back to in-memory cache")
		} else {
			summaryCache = cache.NewRedis(client)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	stores := order.NewStores(database.Pool)
	orderSvc := order.NewService(stores)
	partnerSvc := partner.NewService(partner.NewRepository(database.Pool))
	invoiceSvc := invoice.NewService(invoice.NewRepository(database.Pool), summaryCache)

	router := transport.NewRouter(orderSvc, partnerSvc, invoiceSvc)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
