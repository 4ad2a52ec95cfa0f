package controllers

import (
	"net/http"

	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	uploads *services.UploadService
}

func NewUploadController(uploads *services.UploadService) *UploadController {
	return &UploadController{uploads: uploads}
}

// @Summary Upload image
// @Description Stores an image and returns its public URL and storage id
// @Tags Admin - Uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image (jpg, png, gif, webp)"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/uploads [post]
func (ctrl *UploadController) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, utils.BadRequest("Image file is required"))
		return
	}

	res, err := ctrl.uploads.UploadImage(c.Request.Context(), header)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Image uploaded", res)
}
