package controllers

import (
	"net/http"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// @Summary Register new user
// @Description Register a new customer account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctrl.auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful", res)
}

// @Summary User login
// @Description Login with email and password. A guest cart sent via X-Session-ID is merged into the account.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctrl.auth.Login(c.Request.Context(), req, middleware.ClientSessionID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", res)
}

// @Summary Get current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user, err := ctrl.auth.Me(c.Request.Context(), middleware.CurrentViewer(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved", user)
}

// @Summary Update profile
// @Description Update first name, last name or phone
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.Response
// @Router /auth/profile [patch]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.auth.UpdateProfile(c.Request.Context(), middleware.CurrentViewer(c).UserID, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", user)
}

// @Summary Change password
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/change-password [post]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.auth.ChangePassword(c.Request.Context(), middleware.CurrentViewer(c).UserID, req); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed", nil)
}
