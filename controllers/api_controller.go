package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// APIController exposes read-only JSON views of the blog.
type APIController struct {
	db    *gorm.DB
	posts *services.PostService
}

// NewAPIController creates an APIController.
func NewAPIController(db *gorm.DB, posts *services.PostService) *APIController {
	return &APIController{db: db, posts: posts}
}

// ListPosts returns all posts ordered by ID.
func (a *APIController) ListPosts(ctx *gin.Context) {
	posts, err := a.posts.ListPosts(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("api list posts", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts, "total": len(posts)})
}

// GetPostDetail returns one post with comments and its average rating.
func (a *APIController) GetPostDetail(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}
	detail, err := a.posts.GetPostDetail(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Sugar.Errorw("api post detail", "post_id", id, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}
	utils.Success(ctx, detail)
}

// Health reports database reachability.
func (a *APIController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	stats := config.Health(c, a.db)
	if stats["status"] != "up" {
		utils.Respond(ctx, http.StatusServiceUnavailable, 50300, "database unavailable", stats)
		return
	}
	utils.Success(ctx, stats)
}
