package middleware

import (
	"strings"

	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// HiddenPaths answers 404 for each listed path and everything below it.
func HiddenPaths(paths []string) gin.HandlerFunc {
	var prefixes []string
	for _, p := range paths {
		p = "/" + strings.Trim(strings.TrimSpace(p), "/")
		if p != "/" {
			prefixes = append(prefixes, p)
		}
	}
	return func(c *gin.Context) {
		if isHidden(c.Request.URL.Path, prefixes) {
			response.NotFound(c)
			return
		}
		c.Next()
	}
}

func isHidden(path string, prefixes []string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
