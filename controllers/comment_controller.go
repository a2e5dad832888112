package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/middleware"
	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/utils"
)

// CommentController manages anonymous comments on posts.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// CreateComment adds an anonymous comment to a post. The parent post's
// blog_id is copied onto the comment at this point and never touched again.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Name    string `json:"name"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "content cannot be empty")
		return
	}
	if len([]rune(content)) > models.MaxCommentLength {
		utils.Error(ctx, http.StatusBadRequest, 40042, "content exceeds 1000 characters")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		name = "Anonymous"
	}

	var post models.Post
	if err := c.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load post")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		BlogID:  post.BlogID,
		Name:    name,
		Content: content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix("cache:comments:" + postID)
	utils.Created(ctx, gin.H{"comment": comment})
}

// ListComments returns a post's comments, newest first (public).
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	if cached, ok := utils.CacheGetBytes("cache:comments:" + postID); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var comments []models.Comment
	if err := c.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list comments")
		return
	}

	payload := gin.H{"comments": comments}
	utils.CacheSetJSON("cache:comments:"+postID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 0)
	utils.Success(ctx, payload)
}

// DeleteComment removes a comment; only the admin owning the parent blog may
// do so.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	commentID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	comment, ok := loadOwnedComment(c.db, ctx, admin, commentID)
	if !ok {
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix("cache:comments:" + comment.PostID)
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
