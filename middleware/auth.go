package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "blog_session"
	// ContextUserKey stores the logged-in *models.User inside Gin context.
	ContextUserKey = "current_user"
	// ContextSessionKey stores the parsed *utils.SessionClaims.
	ContextSessionKey = "session_claims"
)

// UserLoader resolves the user a session belongs to.
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// LoadSession attaches the current user to the context when the request carries a valid,
// unrevoked session cookie. Requests without one continue anonymously. A rejected cookie is
// cleared with the same Secure attribute it was issued with.
func LoadSession(secret string, secure bool, loader UserLoader, revoked *utils.RevocationStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookie)
		if err != nil || token == "" {
			ctx.Next()
			return
		}

		claims, err := utils.ParseSession(secret, token)
		if err != nil || revoked.IsRevoked(ctx.Request.Context(), claims.ID) {
			ClearSessionCookie(ctx, secure)
			ctx.Next()
			return
		}

		user, err := loader.GetUser(ctx.Request.Context(), claims.UserID)
		if err != nil {
			// deleted user or database trouble: treat as anonymous
			utils.Sugar.Debugw("session user not loaded", "user_id", claims.UserID, "err", err)
			ctx.Next()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextSessionKey, claims)
		ctx.Next()
	}
}

// LoginRequired redirects anonymous visitors to the login page.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentUser(ctx); ok {
			ctx.Next()
			return
		}
		utils.SetFlash(ctx, "warning", "Please log in to continue.")
		ctx.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(ctx.Request.URL.Path))
		ctx.Abort()
	}
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentSession returns the parsed session claims, if any.
func CurrentSession(ctx *gin.Context) (*utils.SessionClaims, bool) {
	v, ok := ctx.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.SessionClaims)
	return claims, ok && claims != nil
}

// SetSessionCookie stores token in the session cookie. A persistent cookie lives
// until the token expires; otherwise it ends with the browser session.
func SetSessionCookie(ctx *gin.Context, token string, expiresAt time.Time, persistent, secure bool) {
	maxAge := 0
	if persistent {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(ctx *gin.Context, secure bool) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
