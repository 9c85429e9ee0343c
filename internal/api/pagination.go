package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

// pageParams reads page/limit query parameters with sane bounds.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return page, limit
}
