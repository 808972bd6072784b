package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blog/models"
)

func TestCreateAndGetPost(t *testing.T) {
	ctx := context.Background()
	posts := NewPostService(newTestDB(t))

	created, err := posts.CreatePost(ctx, "  Hello  ", "First text")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Hello", created.Description)

	got, err := posts.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Hello", got.Description)
	assert.Equal(t, "First text", got.Text)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	posts := NewPostService(newTestDB(t))

	tests := []struct {
		name        string
		description string
		text        string
	}{
		{name: "empty description", description: "  ", text: "x"},
		{name: "empty text", description: "title", text: ""},
		{name: "description too long", description: strings.Repeat("a", models.DescriptionMaxLen+1), text: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := posts.CreatePost(ctx, tt.description, tt.text)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// the limit counts characters, not bytes
	_, err := posts.CreatePost(ctx, strings.Repeat("é", models.DescriptionMaxLen), "x")
	assert.NoError(t, err)
}

func TestGetPostMissing(t *testing.T) {
	posts := NewPostService(newTestDB(t))

	_, err := posts.GetPost(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsOrderedByID(t *testing.T) {
	ctx := context.Background()
	posts := NewPostService(newTestDB(t))

	empty, err := posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := mustCreatePost(t, posts, "a")
	b := mustCreatePost(t, posts, "b")
	c := mustCreatePost(t, posts, "c")

	list, err := posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	posts := NewPostService(db)
	comments := NewCommentService(db)
	ratings := NewRatingService(db)
	user := mustRegister(t, NewAuthService(db), "alice")

	keep := mustCreatePost(t, posts, "keep")
	gone := mustCreatePost(t, posts, "gone")
	for _, p := range []*models.Post{keep, gone} {
		_, err := comments.AddComment(ctx, "nice", p.ID, user.ID)
		require.NoError(t, err)
		_, err = ratings.AddRating(ctx, 4, p.ID)
		require.NoError(t, err)
	}

	deleted, err := posts.DeletePost(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = posts.GetPost(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", gone.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Rating{}).Where("post_id = ?", gone.ID).Count(&n).Error)
	assert.Zero(t, n)

	detail, err := posts.GetPostDetail(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, 1, detail.RatingCount)

	again, err := posts.DeletePost(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestDeletePostMissing(t *testing.T) {
	posts := NewPostService(newTestDB(t))

	deleted, err := posts.DeletePost(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	posts := NewPostService(newTestDB(t))
	post := mustCreatePost(t, posts, "before")

	require.NoError(t, posts.UpdatePost(ctx, post.ID, "after"))
	got, err := posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Description)
	assert.Equal(t, post.Text, got.Text)

	// same value twice is not a missing row
	require.NoError(t, posts.UpdatePost(ctx, post.ID, "after"))

	assert.ErrorIs(t, posts.UpdatePost(ctx, post.ID+100, "x"), ErrNotFound)
	assert.ErrorIs(t, posts.UpdatePost(ctx, post.ID, ""), ErrValidation)
}

func TestEditPost(t *testing.T) {
	ctx := context.Background()
	posts := NewPostService(newTestDB(t))
	post := mustCreatePost(t, posts, "before")

	edited, err := posts.EditPost(ctx, post.ID, "after", "new body")
	require.NoError(t, err)
	assert.Equal(t, "after", edited.Description)
	assert.Equal(t, "new body", edited.Text)

	got, err := posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new body", got.Text)

	_, err = posts.EditPost(ctx, post.ID+1, "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = posts.EditPost(ctx, post.ID, "x", " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetPostDetail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	posts := NewPostService(db)
	comments := NewCommentService(db)
	ratings := NewRatingService(db)
	auth := NewAuthService(db)
	alice := mustRegister(t, auth, "alice")
	bob := mustRegister(t, auth, "bob")

	post := mustCreatePost(t, posts, "detail")

	detail, err := posts.GetPostDetail(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.AverageRating)
	assert.Zero(t, detail.RatingCount)
	assert.NotNil(t, detail.Comments)
	assert.Empty(t, detail.Comments)

	_, err = comments.AddComment(ctx, "first", post.ID, alice.ID)
	require.NoError(t, err)
	_, err = comments.AddComment(ctx, "second", post.ID, bob.ID)
	require.NoError(t, err)
	for _, v := range []int{3, 4} {
		_, err = ratings.AddRating(ctx, v, post.ID)
		require.NoError(t, err)
	}

	detail, err = posts.GetPostDetail(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 3.5, *detail.AverageRating, 1e-9)
	assert.Equal(t, 2, detail.RatingCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "first", detail.Comments[0].Text)
	assert.Equal(t, "alice", detail.Comments[0].User.Username)
	assert.Equal(t, "second", detail.Comments[1].Text)
	assert.Equal(t, "bob", detail.Comments[1].User.Username)
	assert.Nil(t, detail.Post.Comments)

	_, err = posts.GetPostDetail(ctx, post.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAverageRating(t *testing.T) {
	assert.Nil(t, AverageRating(nil))

	avg := AverageRating([]models.Rating{{Value: 1}, {Value: 2}, {Value: 2}})
	require.NotNil(t, avg)
	assert.InDelta(t, 5.0/3.0, *avg, 1e-9)
}
