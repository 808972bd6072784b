package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie     = "blog_flash"
	cookieSecureKey = "cookie_secure"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// SecureCookies records whether cookies written during the request carry the Secure attribute.
func SecureCookies(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cookieSecureKey, secure)
		c.Next()
	}
}

// SetFlash queues a message for the next page view.
func SetFlash(c *gin.Context, category, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, category+"|"+message, 60, "/", "", c.GetBool(cookieSecureKey), true)
}

// PopFlash returns the queued message, if any, and clears it.
func PopFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", c.GetBool(cookieSecureKey), true)

	// gin unescapes cookie values
	category, message, ok := strings.Cut(raw, "|")
	if !ok {
		return &Flash{Category: "info", Message: raw}
	}
	return &Flash{Category: category, Message: message}
}
