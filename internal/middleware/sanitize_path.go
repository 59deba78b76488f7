package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizePath strips markup from the path parameters the handlers read and from the logged request path.
// Routing has already happened at this point, so the parameters are cleaned in place.
func SanitizePath() gin.HandlerFunc {
	p := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		for i := range c.Params {
			c.Params[i].Value = p.Sanitize(c.Params[i].Value)
		}
		c.Request.URL.Path = p.Sanitize(c.Request.URL.Path)
		c.Next()
	}
}
