package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 统一响应结构：{"code","message","data"}
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func internalError(c *gin.Context) {
	fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
}
