package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/utils"
)

// render executes a page template with the fields every page needs.
func render(ctx *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.CurrentUser(ctx); ok {
		data["User"] = user
	} else {
		data["User"] = nil
	}
	data["Flash"] = utils.PopFlash(ctx)
	if _, ok := data["Error"]; !ok {
		data["Error"] = ""
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	ctx.HTML(status, page, data)
}

// renderError shows the error page and stops the handler chain.
func renderError(ctx *gin.Context, status int, message string) {
	render(ctx, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
	ctx.Abort()
}

// NotFound is the fallback for unknown routes.
func NotFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
		return
	}
	renderError(ctx, http.StatusNotFound, "Page not found.")
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// safeNext keeps post-login redirects on this site. Browsers read a backslash as a slash,
// so "/\host" is as off-site as "//host". Control characters are rejected by url.Parse.
func safeNext(next string) string {
	if len(next) == 0 || next[0] != '/' {
		return "/"
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
