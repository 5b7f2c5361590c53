package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexcase/caseflow/internal/model"
)

// pageQuery reads ?page= and ?limit=. Unparsable or out of range values fall
// back to page 1 and model.DefaultPageLimit; limit is capped at
// model.MaxPageLimit.
func pageQuery(c *gin.Context) (page, limit int) {
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	limit = queryInt(c, "limit", model.DefaultPageLimit)
	switch {
	case limit < 1:
		limit = model.DefaultPageLimit
	case limit > model.MaxPageLimit:
		limit = model.MaxPageLimit
	}
	return page, limit
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// queryBool reads a boolean query flag; anything unparsable is false
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
