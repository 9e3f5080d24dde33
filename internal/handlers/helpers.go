package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/the-lucky-clover/agentcy-one/internal/middleware"
)

func currentUserID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.CtxUserID)
	return id, id != ""
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
