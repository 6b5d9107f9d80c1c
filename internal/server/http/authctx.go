package httpserver

import "github.com/gin-gonic/gin"

const emailKey = "bookrev.email"

// SetEmail stores the authenticated identity claim in the gin context.
func SetEmail(c *gin.Context, email string) {
	c.Set(emailKey, email)
}

// EmailFromCtx fetches the identity claim attached by the auth middleware.
func EmailFromCtx(c *gin.Context) (string, bool) {
	v, ok := c.Get(emailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}
