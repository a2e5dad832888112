package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/multiblog/models"
)

func TestCreateBlogCallerBecomesOwner(t *testing.T) {
	r, _ := newTestRouter(t)
	adminID, token := registerAndLogin(t, r, "a@x.com", "p", "A")

	blog := createBlog(t, r, token, "B", nil)
	assert.Equal(t, adminID, blog.AdminID)

	// Public read works without auth and carries no credential material.
	rec := doJSON(t, r, http.MethodGet, "/api/v1/blogs/"+blog.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "session_token")
}

func TestCreateBlogRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/blogs", "", gin.H{"name": "B"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMyBlogsOnlyOwn(t *testing.T) {
	r, _ := newTestRouter(t)
	_, tokenA := registerAndLogin(t, r, "a@x.com", "p", "A")
	_, tokenC := registerAndLogin(t, r, "c@x.com", "p", "C")

	createBlog(t, r, tokenA, "alpha", nil)
	createBlog(t, r, tokenA, "beta", nil)
	createBlog(t, r, tokenC, "gamma", nil)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/blogs", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Blogs []models.Blog `json:"blogs"`
	}
	decodeData(t, rec, &resp)
	require.Len(t, resp.Blogs, 2)
	for _, b := range resp.Blogs {
		assert.NotEqual(t, "gamma", b.Name)
	}
}

func TestBlogMutationsForbiddenForNonOwner(t *testing.T) {
	r, _ := newTestRouter(t)
	_, tokenA := registerAndLogin(t, r, "a@x.com", "p", "A")
	_, tokenC := registerAndLogin(t, r, "c@x.com", "p", "C")

	blog := createBlog(t, r, tokenA, "B", []string{"tech"})
	post := createPost(t, r, tokenA, blog.ID, "hello", "tech")
	comment := createComment(t, r, post.ID, "", "nice post")

	rec := doJSON(t, r, http.MethodPut, "/api/v1/blogs/"+blog.ID, tokenC, gin.H{"name": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/v1/blogs/"+blog.ID, tokenC, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/blogs/"+blog.ID+"/posts", tokenC, gin.H{
		"title": "intruder", "content": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/api/v1/posts/"+post.ID, tokenC, gin.H{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/v1/posts/"+post.ID, tokenC, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/v1/comments/"+comment.ID, tokenC, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Nothing was altered.
	rec = doJSON(t, r, http.MethodGet, "/api/v1/blogs/"+blog.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Blog models.Blog `json:"blog"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, "B", resp.Blog.Name)
}

func TestUpdateBlogPartial(t *testing.T) {
	r, _ := newTestRouter(t)
	_, token := registerAndLogin(t, r, "a@x.com", "p", "A")
	blog := createBlog(t, r, token, "B", []string{"tech"})

	rec := doJSON(t, r, http.MethodPut, "/api/v1/blogs/"+blog.ID, token, gin.H{
		"description": "about things",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Blog models.Blog `json:"blog"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, "B", resp.Blog.Name)
	assert.Equal(t, "about things", resp.Blog.Description)
	assert.Equal(t, models.StringList{"tech"}, resp.Blog.Categories)

	rec = doJSON(t, r, http.MethodPut, "/api/v1/blogs/"+blog.ID, token, gin.H{
		"categories": []string{"life", "life", " tech "},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Equal(t, models.StringList{"life", "tech"}, resp.Blog.Categories)
}

func TestDeleteBlogCascades(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := registerAndLogin(t, r, "a@x.com", "p", "A")
	blog := createBlog(t, r, token, "B", nil)

	p1 := createPost(t, r, token, blog.ID, "one", "")
	p2 := createPost(t, r, token, blog.ID, "two", "")
	createComment(t, r, p1.ID, "v", "first")
	createComment(t, r, p1.ID, "w", "second")
	createComment(t, r, p2.ID, "", "third")

	rec := doJSON(t, r, http.MethodDelete, "/api/v1/blogs/"+blog.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, "/api/v1/blogs/"+blog.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/api/v1/posts/"+p1.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var posts, comments int64
	require.NoError(t, db.Model(&models.Post{}).Where("blog_id = ?", blog.ID).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("blog_id = ?", blog.ID).Count(&comments).Error)
	assert.EqualValues(t, 0, posts)
	assert.EqualValues(t, 0, comments)
}

func TestBlogIDValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/blogs/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/blogs/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
