package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"spooky-styles/models"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondPage[T any](c *gin.Context, message string, result models.Page[T], page, limit int) {
	items := result.Items
	if items == nil {
		items = []T{}
	}

	meta := utils.BuildMeta(page, limit, result.Total)
	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    items,
		Meta:    meta,
		Links:   pageLinks(c, page, limit, meta.TotalPages),
	})
}

// pageLinks builds self/prev/next URLs that keep every other query value.
func pageLinks(c *gin.Context, page, limit, totalPages int) models.PaginationLinks {
	scheme := "https"
	if c.Request.TLS == nil && c.GetHeader("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}

	query := c.Request.URL.Query()
	makeURL := func(pageNum int) string {
		params := url.Values{}
		for key, values := range query {
			if key == "page" || key == "limit" {
				continue
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("limit", strconv.Itoa(limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
	}

	links := models.PaginationLinks{Self: makeURL(page)}
	if page > 1 {
		links.Prev = makeURL(page - 1)
	}
	if page < totalPages {
		links.Next = makeURL(page + 1)
	}
	return links
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, utils.BindingError(err))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		fail(c, utils.BadRequest("Invalid "+name))
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (page, limit int) {
	return utils.ParsePagination(c.Query("page"), c.Query("limit"), utils.DefaultPageLimit)
}

// sendXLSX buffers the workbook so a failed export still gets a JSON error.
func sendXLSX(c *gin.Context, name string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
