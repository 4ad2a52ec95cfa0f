package controllers

import (
	"context"
	"net/http"
	"time"

	"spooky-styles/logger"
	"spooky-styles/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db    Pinger
	redis *redis.Client
}

func NewHealthController(db Pinger, client *redis.Client) *HealthController {
	return &HealthController{db: db, redis: client}
}

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Time     string `json:"time"`
}

// @Summary Health check
// @Description 503 when the database is unreachable. Redis is optional and only degrades the status.
// @Tags Platform
// @Produce json
// @Success 200 {object} controllers.HealthStatus
// @Failure 503 {object} controllers.HealthStatus
// @Router /health [get]
func (ctrl *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	log := logger.FromContext(ctx)

	res := HealthStatus{
		Status:   "ok",
		Database: "up",
		Redis:    "disabled",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if err := ctrl.db.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health: database ping failed")
		res.Status = "error"
		res.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if ctrl.redis != nil {
		res.Redis = "up"
		if err := ctrl.redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("health: redis ping failed")
			res.Redis = "down"
			if status == http.StatusOK {
				res.Status = "degraded"
			}
		}
	}

	c.JSON(status, res)
}

type CSRFController struct {
	store   *middleware.CSRFStore
	enabled bool
}

func NewCSRFController(store *middleware.CSRFStore, enabled bool) *CSRFController {
	return &CSRFController{store: store, enabled: enabled && store.Enabled()}
}

type CSRFToken struct {
	Enabled   bool   `json:"enabled"`
	Token     string `json:"csrf_token,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// @Summary Get CSRF token
// @Description Token for the X-CSRF-Token header. enabled is false when CSRF protection is off.
// @Tags Security
// @Produce json
// @Success 200 {object} models.Response
// @Router /csrf-token [get]
func (ctrl *CSRFController) Token(c *gin.Context) {
	if !ctrl.enabled {
		respond(c, http.StatusOK, "CSRF protection disabled", CSRFToken{Enabled: false})
		return
	}

	token, err := ctrl.store.Issue(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "CSRF token issued", CSRFToken{
		Enabled:   true,
		Token:     token,
		ExpiresIn: int(middleware.CSRFTokenTTL.Seconds()),
	})
}
