package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/utils"
)

// requireID validates a path-supplied identifier before any lookup. A
// malformed id is a client error, never a store error.
func requireID(ctx *gin.Context, param string) (string, bool) {
	id := strings.TrimSpace(ctx.Param(param))
	if _, err := uuid.Parse(id); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "malformed "+param)
		return "", false
	}
	return id, true
}

// ownsBlog reports whether the blog exists and belongs to the admin.
func ownsBlog(db *gorm.DB, adminID, blogID string) (bool, error) {
	var count int64
	err := db.Model(&models.Blog{}).Where("id = ? AND admin_id = ?", blogID, adminID).Count(&count).Error
	return count > 0, err
}

// loadOwnedBlog resolves a blog and verifies the admin owns it, writing the
// appropriate error response otherwise. Ownership is checked per-operation,
// never cached: tokens and ownership can change between requests.
func loadOwnedBlog(db *gorm.DB, ctx *gin.Context, admin models.Admin, blogID string) (models.Blog, bool) {
	var blog models.Blog
	if err := db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load blog")
		}
		return models.Blog{}, false
	}
	if blog.AdminID != admin.ID {
		utils.Error(ctx, http.StatusForbidden, 40310, "you do not own this blog")
		return models.Blog{}, false
	}
	return blog, true
}

// loadOwnedPost resolves a post and verifies the admin owns its parent blog.
func loadOwnedPost(db *gorm.DB, ctx *gin.Context, admin models.Admin, postID string) (models.Post, bool) {
	var post models.Post
	if err := db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "post not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load post")
		}
		return models.Post{}, false
	}
	owned, err := ownsBlog(db, admin.ID, post.BlogID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to verify ownership")
		return models.Post{}, false
	}
	if !owned {
		utils.Error(ctx, http.StatusForbidden, 40311, "you do not own the blog of this post")
		return models.Post{}, false
	}
	return post, true
}

// loadOwnedComment resolves a comment and verifies ownership through its
// denormalized blog id. The parent post is never consulted, so the check
// still works when the post was deleted in a concurrent cascade.
func loadOwnedComment(db *gorm.DB, ctx *gin.Context, admin models.Admin, commentID string) (models.Comment, bool) {
	var comment models.Comment
	if err := db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "comment not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load comment")
		}
		return models.Comment{}, false
	}
	owned, err := ownsBlog(db, admin.ID, comment.BlogID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to verify ownership")
		return models.Comment{}, false
	}
	if !owned {
		utils.Error(ctx, http.StatusForbidden, 40312, "you do not own the blog of this comment")
		return models.Comment{}, false
	}
	return comment, true
}
