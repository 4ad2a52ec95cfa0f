package main

//go:generate swag init -g main.go -o docs

import (
	"context"
	"os/signal"
	"syscall"

	"spooky-styles/config"
	_ "spooky-styles/docs"
	"spooky-styles/logger"
	"spooky-styles/server"
)

// @title Spooky Styles API
// @version 1.0
// @description Costume and wig storefront: catalog, guest and member carts, checkout, payments and admin tools.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("spooky-styles", true).Fatal().Err(err).Msg("error loading config")
	}

	log := logger.NewLogger("spooky-styles", !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
	}
}
