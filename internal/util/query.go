package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryLimit reads ?limit=, falling back to def for missing or non-positive values and
// clamping to max.
func QueryLimit(c *gin.Context, def, max int) int {
	limit := def
	if s := c.Query("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
