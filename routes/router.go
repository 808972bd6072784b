package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/controllers"
	"github.com/cppla/blog/metrics"
	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/templates"
	"github.com/cppla/blog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
// rc may be nil, in which case logged-out sessions are remembered in memory.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, rc *redis.Client) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
		if err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnw("gin access log unavailable, using application logger", "path", cfg.GinPath, "err", err)
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// browsers refuse credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(metrics.Middleware())

	r.SetHTMLTemplate(templates.Must())

	postService := services.NewPostService(db)
	commentService := services.NewCommentService(db)
	ratingService := services.NewRatingService(db)
	authService := services.NewAuthService(db)
	revoked := utils.NewRevocationStore(rc)

	r.Use(utils.SecureCookies(cfg.CookieSecure))
	r.Use(middleware.LoadSession(cfg.SecretKey, cfg.CookieSecure, authService, revoked))

	authController := controllers.NewAuthController(authService, revoked, cfg)
	postController := controllers.NewPostController(postService, commentService, ratingService)
	apiController := controllers.NewAPIController(db, postService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	loginRequired := middleware.LoginRequired()

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", apiController.Health)

	r.GET("/", postController.Index)
	r.GET("/login", authController.LoginPage)
	r.POST("/login", limiter.Handler(), authController.Login)
	r.GET("/logout", authController.Logout)
	r.GET("/register", authController.RegisterPage)
	r.POST("/register", limiter.Handler(), authController.Register)

	r.GET("/post/:id", postController.ViewPost)
	r.POST("/post/:id", loginRequired, postController.SubmitOnPost)
	r.POST("/post/:id/comment", loginRequired, postController.AddComment)
	r.POST("/post/:id/rating", loginRequired, postController.AddRating)

	r.GET("/new_post", loginRequired, postController.NewPostPage)
	r.POST("/new_post", loginRequired, postController.CreatePost)
	r.GET("/:id/update_post", loginRequired, postController.EditPostPage)
	r.POST("/:id/update_post", loginRequired, postController.UpdatePost)
	r.GET("/:id", loginRequired, postController.DeletePost)
	r.POST("/:id/delete", loginRequired, postController.DeletePost)

	api := r.Group("/api/v1")
	api.GET("/posts", apiController.ListPosts)
	api.GET("/posts/:id", apiController.GetPostDetail)

	r.NoRoute(controllers.NotFound)

	return r
}
