package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// MountSPA 托管前端静态文件；未匹配 API 的 GET 均返回 index.html
func MountSPA(r *gin.Engine, webRoot string) {
	if webRoot == "" {
		return
	}
	assetsDir := filepath.Join(webRoot, "assets")
	indexFile := filepath.Join(webRoot, "index.html")
	r.Static("/assets", assetsDir)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			fail(c, http.StatusNotFound, "not_found", "route not found")
			return
		}
		c.File(indexFile)
	})
}
