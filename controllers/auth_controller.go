package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/metrics"
	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	auth    *services.AuthService
	revoked *utils.RevocationStore

	secret       string
	sessionTTL   time.Duration
	secureCookie bool
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService, revoked *utils.RevocationStore, cfg config.AppConfig) *AuthController {
	return &AuthController{
		auth:         auth,
		revoked:      revoked,
		secret:       cfg.SecretKey,
		sessionTTL:   time.Duration(cfg.SessionTTLHours) * time.Hour,
		secureCookie: cfg.CookieSecure,
	}
}

type loginForm struct {
	Username   string `form:"username" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

type registerForm struct {
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

// LoginPage shows the login form, or sends logged-in users home.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); ok {
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	render(ctx, http.StatusOK, "login.html", gin.H{
		"Title":    "Log in",
		"Username": "",
		"Next":     ctx.Query("next"),
	})
}

// Login verifies credentials and starts a session.
func (a *AuthController) Login(ctx *gin.Context) {
	var form loginForm
	if err := ctx.ShouldBind(&form); err != nil {
		render(ctx, http.StatusBadRequest, "login.html", gin.H{
			"Title":    "Log in",
			"Error":    "Username and password are required.",
			"Username": strings.TrimSpace(form.Username),
			"Next":     ctx.Query("next"),
		})
		return
	}

	user, err := a.auth.Authenticate(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		metrics.RecordLogin(false)
		if !errors.Is(err, services.ErrAuthFailure) {
			utils.Sugar.Errorw("authenticate", "username", form.Username, "err", err)
		}
		utils.SetFlash(ctx, "danger", "Invalid username or password.")
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	token, claims, err := utils.IssueSession(a.secret, user.ID, user.Username, a.sessionTTL)
	if err != nil {
		utils.Sugar.Errorw("issue session", "user_id", user.ID, "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not start a session, please try again.")
		return
	}
	middleware.SetSessionCookie(ctx, token, claims.ExpiresAt.Time, form.RememberMe, a.secureCookie)
	metrics.RecordLogin(true)

	utils.SetFlash(ctx, "success", "Welcome, "+user.Username+"!")
	ctx.Redirect(http.StatusFound, safeNext(ctx.Query("next")))
}

// Logout revokes the current session and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if claims, ok := middleware.CurrentSession(ctx); ok {
		a.revoked.Revoke(ctx.Request.Context(), claims.ID, claims.ExpiresAt.Time)
	}
	middleware.ClearSessionCookie(ctx, a.secureCookie)
	ctx.Redirect(http.StatusFound, "/")
}

// RegisterPage shows the registration form.
func (a *AuthController) RegisterPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "register.html", gin.H{"Title": "Register", "Username": ""})
}

// Register creates an account. It does not log the new user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var form registerForm
	redisplay := func(status int, msg string) {
		render(ctx, status, "register.html", gin.H{
			"Title":    "Register",
			"Error":    msg,
			"Username": strings.TrimSpace(form.Username),
		})
	}

	if err := ctx.ShouldBind(&form); err != nil {
		redisplay(http.StatusBadRequest, "All fields are required.")
		return
	}
	if form.Password != form.Password2 {
		redisplay(http.StatusBadRequest, "Passwords do not match.")
		return
	}

	user, err := a.auth.Register(ctx.Request.Context(), form.Username, form.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrDuplicateUsername):
		redisplay(http.StatusConflict, "That username is already taken.")
		return
	case errors.Is(err, services.ErrValidation):
		redisplay(http.StatusBadRequest, validationMessage(err))
		return
	default:
		utils.Sugar.Errorw("register", "username", form.Username, "err", err)
		renderError(ctx, http.StatusInternalServerError, "Registration failed, please try again.")
		return
	}

	utils.Sugar.Infow("user registered", "user_id", user.ID, "username", user.Username)
	utils.SetFlash(ctx, "success", "Registration complete, you can log in now.")
	ctx.Redirect(http.StatusFound, "/")
}

func validationMessage(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
