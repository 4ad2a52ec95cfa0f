package controllers

import (
	"net/http"
	"strconv"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

func viewerID(c *gin.Context) *int {
	if id := middleware.CurrentViewer(c).UserID; id > 0 {
		return &id
	}
	return nil
}

// @Summary Track page view
// @Tags Analytics
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param request body models.PageViewRequest true "Page view"
// @Success 201 {object} models.Response
// @Router /analytics/pageview [post]
func (ctrl *AnalyticsController) TrackPageView(c *gin.Context) {
	var req models.PageViewRequest
	if !bindJSON(c, &req) {
		return
	}

	err := ctrl.analytics.TrackPageView(c.Request.Context(), models.PageView{
		SessionID: middleware.SessionID(c),
		UserID:    viewerID(c),
		Path:      req.Path,
		Referrer:  req.Referrer,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Page view recorded", nil)
}

// @Summary Track event
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body models.EventRequest true "Event"
// @Success 201 {object} models.Response
// @Router /analytics/event [post]
func (ctrl *AnalyticsController) TrackEvent(c *gin.Context) {
	var req models.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	err := ctrl.analytics.TrackEvent(c.Request.Context(), models.AnalyticsEvent{
		SessionID: middleware.SessionID(c),
		UserID:    viewerID(c),
		EventType: req.EventType,
		EventData: req.EventData,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Event recorded", nil)
}

// @Summary Report client error
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body models.ErrorLogRequest true "Error"
// @Success 201 {object} models.Response
// @Router /analytics/error [post]
func (ctrl *AnalyticsController) LogError(c *gin.Context) {
	var req models.ErrorLogRequest
	if !bindJSON(c, &req) {
		return
	}

	err := ctrl.analytics.LogError(c.Request.Context(), models.ErrorLog{
		SessionID: middleware.SessionID(c),
		UserID:    viewerID(c),
		Message:   req.Message,
		Stack:     req.Stack,
		Path:      req.Path,
		Severity:  req.Severity,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Error recorded", nil)
}

// @Summary Analytics summary
// @Tags Admin - Analytics
// @Security BearerAuth
// @Produce json
// @Param days query int false "Days to look back (1-365)" default(30)
// @Success 200 {object} models.Response
// @Router /admin/analytics/summary [get]
func (ctrl *AnalyticsController) Summary(c *gin.Context) {
	days := services.DefaultSummaryDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, utils.BadRequest("days must be a number"))
			return
		}
		days = n
	}

	summary, err := ctrl.analytics.Summary(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Analytics summary", summary)
}
