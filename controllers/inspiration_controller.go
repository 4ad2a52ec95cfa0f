package controllers

import (
	"net/http"

	"spooky-styles/models"
	"spooky-styles/services"

	"github.com/gin-gonic/gin"
)

type InspirationController struct {
	inspirations *services.InspirationService
}

func NewInspirationController(inspirations *services.InspirationService) *InspirationController {
	return &InspirationController{inspirations: inspirations}
}

// @Summary List costume inspirations
// @Tags Inspirations
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} models.Response
// @Router /inspirations [get]
func (ctrl *InspirationController) List(c *gin.Context) {
	ctrl.list(c, false)
}

// @Summary Get inspiration
// @Description Inspiration with its products, primary first
// @Tags Inspirations
// @Produce json
// @Param id path int true "Inspiration ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /inspirations/{id} [get]
func (ctrl *InspirationController) Get(c *gin.Context) {
	ctrl.get(c, false)
}

// @Summary List all inspirations
// @Description Includes inactive inspirations
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} models.Response
// @Router /admin/inspirations [get]
func (ctrl *InspirationController) AdminList(c *gin.Context) {
	ctrl.list(c, true)
}

// @Summary Get inspiration (admin)
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Inspiration ID"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id} [get]
func (ctrl *InspirationController) AdminGet(c *gin.Context) {
	ctrl.get(c, true)
}

func (ctrl *InspirationController) list(c *gin.Context, includeInactive bool) {
	list, err := ctrl.inspirations.List(c.Request.Context(), c.Query("category"), includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []models.Inspiration{}
	}
	respond(c, http.StatusOK, "Inspirations retrieved", list)
}

func (ctrl *InspirationController) get(c *gin.Context, includeInactive bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	in, err := ctrl.inspirations.Get(c.Request.Context(), id, includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Inspiration retrieved", in)
}

// @Summary Create inspiration
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.InspirationRequest true "Inspiration"
// @Success 201 {object} models.Response
// @Router /admin/inspirations [post]
func (ctrl *InspirationController) Create(c *gin.Context) {
	var req models.InspirationRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := ctrl.inspirations.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Inspiration created", in)
}

// @Summary Update inspiration
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Inspiration ID"
// @Param request body models.InspirationRequest true "Inspiration"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id} [put]
func (ctrl *InspirationController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.InspirationRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := ctrl.inspirations.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Inspiration updated", in)
}

// @Summary Delete inspiration
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Inspiration ID"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id} [delete]
func (ctrl *InspirationController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.inspirations.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Inspiration deleted", nil)
}

// @Summary Link product to inspiration
// @Description Creates or updates the link. Marking a product primary clears any other primary.
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Inspiration ID"
// @Param request body models.InspirationProductRequest true "Product link"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id}/products [post]
func (ctrl *InspirationController) AttachProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.InspirationProductRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := ctrl.inspirations.AttachProduct(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product linked", in)
}

// @Summary Unlink product from inspiration
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Inspiration ID"
// @Param productId path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id}/products/{productId} [delete]
func (ctrl *InspirationController) DetachProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	if err := ctrl.inspirations.DetachProduct(c.Request.Context(), id, productID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product unlinked", nil)
}

// @Summary Reorder inspiration products
// @Tags Admin - Inspirations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Inspiration ID"
// @Param request body models.ReorderProductsRequest true "Product ids in display order"
// @Success 200 {object} models.Response
// @Router /admin/inspirations/{id}/products/order [put]
func (ctrl *InspirationController) ReorderProducts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ReorderProductsRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := ctrl.inspirations.ReorderProducts(c.Request.Context(), id, req.ProductIDs)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products reordered", in)
}
