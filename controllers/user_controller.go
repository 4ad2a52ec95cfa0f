package controllers

import (
	"net/http"
	"strings"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// @Summary Get all users
// @Tags Admin - Users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search by email or name"
// @Success 200 {object} models.PaginationResponse
// @Router /admin/users [get]
func (ctrl *UserController) List(c *gin.Context) {
	page, limit := pagination(c)

	result, err := ctrl.users.List(c.Request.Context(), page, limit, strings.TrimSpace(c.Query("search")))
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, "Users retrieved", result, page, limit)
}

// @Summary Get user by ID
// @Tags Admin - Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id} [get]
func (ctrl *UserController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved", user)
}

// @Summary Change user role
// @Tags Admin - Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRoleRequest true "Role"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.users.UpdateRole(c.Request.Context(), middleware.CurrentViewer(c), id, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User role updated", user)
}

// @Summary Delete user
// @Tags Admin - Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/users/{id} [delete]
func (ctrl *UserController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.users.Delete(c.Request.Context(), middleware.CurrentViewer(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted", nil)
}
