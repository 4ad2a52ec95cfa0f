package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"spooky-styles/models"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// productFilter reads the list query. Unknown sort values fall back to newest.
func productFilter(c *gin.Context) (models.ProductFilter, error) {
	page, limit := pagination(c)
	f := models.ProductFilter{
		Page:     page,
		Limit:    limit,
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     models.SortNewest,
	}

	switch sort := c.Query("sort"); sort {
	case models.SortPriceAsc, models.SortPriceDesc, models.SortName:
		f.Sort = sort
	}

	var err error
	if f.MinPrice, err = priceQuery(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = priceQuery(c, "max_price"); err != nil {
		return f, err
	}

	if raw := c.Query("in_stock"); raw != "" {
		f.InStock, err = strconv.ParseBool(raw)
		if err != nil {
			return f, utils.BadRequest("in_stock must be true or false")
		}
	}
	return f, nil
}

func priceQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, utils.BadRequest(name + " must be a non-negative number")
	}
	return &d, nil
}

// @Summary Get all products
// @Description Paginated list of active products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param category query string false "Category"
// @Param search query string false "Search in name and description"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param in_stock query bool false "Only products in stock"
// @Param sort query string false "newest, price_asc, price_desc or name"
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := ctrl.products.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, "Products retrieved", result, filter.Page, filter.Limit)
}

// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.products.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved", product)
}

// @Summary Get all categories
// @Description Distinct categories of active products
// @Tags Products
// @Produce json
// @Success 200 {object} models.Response
// @Router /products/categories [get]
func (ctrl *ProductController) Categories(c *gin.Context) {
	categories, err := ctrl.products.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respond(c, http.StatusOK, "Categories retrieved", categories)
}

// @Summary Create product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.Response
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.products.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", product)
}

// @Summary Update product
// @Description Partial update; omitted fields are left unchanged
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := ctrl.products.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", product)
}

// @Summary Delete product
// @Description Hides the product from the storefront
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.products.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted", nil)
}

// @Summary Add product color
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.ProductColorRequest true "Color"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/products/{id}/colors [post]
func (ctrl *ProductController) AddColor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ProductColorRequest
	if !bindJSON(c, &req) {
		return
	}

	color, err := ctrl.products.AddColor(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Color added", color)
}

// @Summary Delete product color
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Param colorId path int true "Color ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/colors/{colorId} [delete]
func (ctrl *ProductController) DeleteColor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	colorID, ok := paramID(c, "colorId")
	if !ok {
		return
	}

	if err := ctrl.products.DeleteColor(c.Request.Context(), id, colorID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Color deleted", nil)
}

// @Summary Upload product image
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Product ID"
// @Param image formData file true "Image (jpg, png, gif, webp)"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/image [post]
func (ctrl *ProductController) UploadImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, utils.BadRequest("Image file is required"))
		return
	}

	product, err := ctrl.products.UploadImage(c.Request.Context(), id, header)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product image uploaded", product)
}

// @Summary Export products
// @Description All products as an Excel workbook
// @Tags Admin - Products
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/products/export [get]
func (ctrl *ProductController) Export(c *gin.Context) {
	sendXLSX(c, "products", func(w io.Writer) error {
		return ctrl.products.Export(c.Request.Context(), w)
	})
}
