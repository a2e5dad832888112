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

// BlogController manages blogs and the blog-level cascade delete.
type BlogController struct {
	db *gorm.DB
}

// NewBlogController creates a BlogController.
func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

// CreateBlog creates a blog owned by the caller.
func (b *BlogController) CreateBlog(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	var req struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name cannot be empty")
		return
	}

	blog := models.Blog{
		AdminID:     admin.ID,
		Name:        name,
		Description: utils.Sanitize(req.Description),
		Categories:  normalizeCategories(req.Categories),
	}
	if err := b.db.Create(&blog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create blog")
		return
	}

	utils.Created(ctx, gin.H{"blog": blog})
}

// ListMyBlogs returns blogs owned by the caller.
func (b *BlogController) ListMyBlogs(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	var blogs []models.Blog
	if err := b.db.Where("admin_id = ?", admin.ID).Order("created_at DESC").Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list blogs")
		return
	}
	utils.Success(ctx, gin.H{"blogs": blogs})
}

// GetBlog returns a single blog (public).
func (b *BlogController) GetBlog(ctx *gin.Context) {
	blogID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	if cached, ok := utils.CacheGetBytes("cache:blog:detail:" + blogID); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load blog")
		return
	}

	payload := gin.H{"blog": blog}
	utils.CacheSetJSON("cache:blog:detail:"+blogID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 0)
	utils.Success(ctx, payload)
}

// UpdateBlog partially updates name, description or the category set.
// Category membership of existing posts is not revisited: the set constrains
// posts at their own create/update time.
func (b *BlogController) UpdateBlog(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	blogID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Categories  *[]string `json:"categories"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	blog, ok := loadOwnedBlog(b.db, ctx, admin, blogID)
	if !ok {
		return
	}

	if req.Name != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40023, "name cannot be empty")
			return
		}
		blog.Name = name
	}
	if req.Description != nil {
		blog.Description = utils.Sanitize(*req.Description)
	}
	if req.Categories != nil {
		blog.Categories = normalizeCategories(*req.Categories)
	}

	if err := b.db.Save(&blog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update blog")
		return
	}

	utils.InvalidateByPrefix("cache:blog:detail:" + blogID)
	utils.Success(ctx, gin.H{"blog": blog})
}

// DeleteBlog removes the blog and cascades to its posts and comments.
// Parent row goes first; a crash mid-cascade can orphan children, which is
// the documented tradeoff of running without multi-row transactions. Child
// delete failures after the parent commit are logged, not surfaced.
func (b *BlogController) DeleteBlog(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	blogID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	blog, ok := loadOwnedBlog(b.db, ctx, admin, blogID)
	if !ok {
		return
	}

	if err := b.db.Delete(&blog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete blog")
		return
	}
	if err := b.db.Where("blog_id = ?", blogID).Delete(&models.Post{}).Error; err != nil {
		utils.Sugar.Errorf("cascade: failed to delete posts of blog %s: %v", blogID, err)
	}
	if err := b.db.Where("blog_id = ?", blogID).Delete(&models.Comment{}).Error; err != nil {
		utils.Sugar.Errorf("cascade: failed to delete comments of blog %s: %v", blogID, err)
	}

	utils.InvalidateByPrefix("cache:blog:detail:" + blogID)
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:")
	utils.InvalidateByPrefix("cache:comments:")
	utils.Success(ctx, gin.H{"message": "blog and associated posts and comments deleted"})
}

// normalizeCategories trims, sanitizes and deduplicates category labels.
func normalizeCategories(raw []string) models.StringList {
	seen := make(map[string]bool, len(raw))
	out := models.StringList{}
	for _, c := range raw {
		c = utils.Sanitize(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
