package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/metrics"
	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// PostController serves the post pages, comments and ratings.
type PostController struct {
	posts    *services.PostService
	comments *services.CommentService
	ratings  *services.RatingService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService, comments *services.CommentService, ratings *services.RatingService) *PostController {
	return &PostController{posts: posts, comments: comments, ratings: ratings}
}

type postForm struct {
	Description string `form:"description"`
	Text        string `form:"text"`
}

// Index lists every post.
func (p *PostController) Index(ctx *gin.Context) {
	posts, err := p.posts.ListPosts(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("list posts", "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not load posts.")
		return
	}
	render(ctx, http.StatusOK, "index.html", gin.H{"Title": "Blog", "Posts": posts})
}

// ViewPost shows a post with its comments and average rating.
func (p *PostController) ViewPost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}
	p.renderPost(ctx, id, http.StatusOK, "")
}

// SubmitOnPost accepts either the comment or the rating form posted back to the post page.
func (p *PostController) SubmitOnPost(ctx *gin.Context) {
	if _, ok := ctx.GetPostForm("rating"); ok {
		p.AddRating(ctx)
		return
	}
	p.AddComment(ctx)
}

// AddComment stores a comment from the logged-in user.
func (p *PostController) AddComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}
	user, _ := middleware.CurrentUser(ctx)

	text := ctx.PostForm("comment")
	_, err := p.comments.AddComment(ctx.Request.Context(), text, id, user.ID)
	switch {
	case err == nil:
		metrics.RecordCreated("comment")
		ctx.Redirect(http.StatusFound, postURL(id))
	case errors.Is(err, services.ErrNotFound):
		renderError(ctx, http.StatusNotFound, "Post not found.")
	case errors.Is(err, services.ErrValidation):
		p.renderPost(ctx, id, http.StatusBadRequest, validationMessage(err))
	default:
		utils.Sugar.Errorw("add comment", "post_id", id, "user_id", user.ID, "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not save the comment.")
	}
}

// AddRating stores a 1 to 5 rating for the post.
func (p *PostController) AddRating(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}

	value, err := strconv.Atoi(strings.TrimSpace(ctx.PostForm("rating")))
	if err != nil {
		p.renderPost(ctx, id, http.StatusBadRequest, "Rating must be a number.")
		return
	}

	_, err = p.ratings.AddRating(ctx.Request.Context(), value, id)
	switch {
	case err == nil:
		metrics.RecordCreated("rating")
		ctx.Redirect(http.StatusFound, postURL(id))
	case errors.Is(err, services.ErrNotFound):
		renderError(ctx, http.StatusNotFound, "Post not found.")
	case errors.Is(err, services.ErrValidation):
		p.renderPost(ctx, id, http.StatusBadRequest, validationMessage(err))
	default:
		utils.Sugar.Errorw("add rating", "post_id", id, "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not save the rating.")
	}
}

// NewPostPage shows the empty post form.
func (p *PostController) NewPostPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "new_post.html", gin.H{"Title": "New post", "Description": "", "Text": ""})
}

// CreatePost stores a new post and returns to the index.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var form postForm
	_ = ctx.ShouldBind(&form)

	post, err := p.posts.CreatePost(ctx.Request.Context(), form.Description, form.Text)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			render(ctx, http.StatusBadRequest, "new_post.html", gin.H{
				"Title":       "New post",
				"Error":       validationMessage(err),
				"Description": form.Description,
				"Text":        form.Text,
			})
			return
		}
		utils.Sugar.Errorw("create post", "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not save the post.")
		return
	}

	metrics.RecordCreated("post")
	utils.Sugar.Infow("post created", "post_id", post.ID)
	ctx.Redirect(http.StatusFound, "/")
}

// EditPostPage shows the edit form filled with the current post.
func (p *PostController) EditPostPage(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}
	post, err := p.posts.GetPost(ctx.Request.Context(), id)
	if err != nil {
		p.postLoadFailed(ctx, id, err)
		return
	}
	render(ctx, http.StatusOK, "update_post.html", gin.H{
		"Title":       "Edit post",
		"PostID":      post.ID,
		"Description": post.Description,
		"Text":        post.Text,
	})
}

// UpdatePost saves the edit form. A form without a text field only changes the description.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}

	var form postForm
	_ = ctx.ShouldBind(&form)

	var err error
	if _, hasText := ctx.GetPostForm("text"); hasText {
		_, err = p.posts.EditPost(ctx.Request.Context(), id, form.Description, form.Text)
	} else {
		err = p.posts.UpdatePost(ctx.Request.Context(), id, form.Description)
	}

	switch {
	case err == nil:
		utils.SetFlash(ctx, "success", "Post updated.")
		ctx.Redirect(http.StatusFound, "/")
	case errors.Is(err, services.ErrValidation):
		render(ctx, http.StatusBadRequest, "update_post.html", gin.H{
			"Title":       "Edit post",
			"Error":       validationMessage(err),
			"PostID":      id,
			"Description": form.Description,
			"Text":        form.Text,
		})
	default:
		p.postLoadFailed(ctx, id, err)
	}
}

// DeletePost removes a post with its comments and ratings.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}

	deleted, err := p.posts.DeletePost(ctx.Request.Context(), id)
	if err != nil {
		utils.Sugar.Errorw("delete post", "post_id", id, "err", err)
		renderError(ctx, http.StatusInternalServerError, "Could not delete the post.")
		return
	}
	if !deleted {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}

	utils.Sugar.Infow("post deleted", "post_id", id)
	utils.SetFlash(ctx, "success", "Post deleted.")
	ctx.Redirect(http.StatusFound, "/")
}

func (p *PostController) renderPost(ctx *gin.Context, id uint, status int, errMsg string) {
	detail, err := p.posts.GetPostDetail(ctx.Request.Context(), id)
	if err != nil {
		p.postLoadFailed(ctx, id, err)
		return
	}
	render(ctx, status, "post.html", gin.H{
		"Title":  detail.Post.Description,
		"Error":  errMsg,
		"Detail": detail,
	})
}

func (p *PostController) postLoadFailed(ctx *gin.Context, id uint, err error) {
	if errors.Is(err, services.ErrNotFound) {
		renderError(ctx, http.StatusNotFound, "Post not found.")
		return
	}
	utils.Sugar.Errorw("load post", "post_id", id, "err", err)
	renderError(ctx, http.StatusInternalServerError, "Could not load the post.")
}

func postURL(id uint) string {
	return "/post/" + strconv.FormatUint(uint64(id), 10)
}
