package utils

import (
	"math"
	"strconv"

	"spooky-styles/models"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParsePagination reads page/limit query values, clamping them to sane bounds.
func ParsePagination(pageStr, limitStr string, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(pageStr)
	limit, _ = strconv.Atoi(limitStr)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

func BuildMeta(page, limit, total int) models.MetaData {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return models.MetaData{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
