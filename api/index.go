// Package api is the serverless entry point. The router is built once per
// cold start and reused across invocations.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"spooky-styles/config"
	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/server"

	"github.com/gin-gonic/gin"
)

var (
	app     *server.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		log := logger.NewLogger("spooky-styles-serverless", false)

		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			log.Error().Err(err).Msg("error loading config")
			return
		}

		app, initErr = server.New(context.Background(), cfg, log)
		if initErr != nil {
			log.Error().Err(initErr).Msg("failed to initialize application")
		}
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Message: "Service unavailable"})
		return
	}
	app.Router.ServeHTTP(w, r)
}
