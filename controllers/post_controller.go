package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/middleware"
	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/utils"
)

// PostController manages posts under a blog: CRUD, listing and likes.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a PostController.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// CreatePost creates a post under the caller's blog. A non-empty category
// must be a member of the blog's current category set.
func (p *PostController) CreatePost(ctx *gin.Context) {
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
		Title    string `json:"title" binding:"required"`
		Excerpt  string `json:"excerpt"`
		Content  string `json:"content" binding:"required"`
		Category string `json:"category"`
		ImageURL string `json:"image_url"`
		Author   string `json:"author"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	blog, ok := loadOwnedBlog(p.db, ctx, admin, blogID)
	if !ok {
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "content cannot be empty")
		return
	}

	category := strings.TrimSpace(req.Category)
	if !categoryAllowed(blog, category) {
		utils.Error(ctx, http.StatusBadRequest, 40033, categoryErrorMessage(blog, category))
		return
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "Admin"
	}

	post := models.Post{
		BlogID:   blog.ID,
		Title:    title,
		Excerpt:  utils.Sanitize(req.Excerpt),
		Content:  content,
		Category: category,
		ImageURL: strings.TrimSpace(req.ImageURL),
		Author:   utils.Sanitize(author),
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:" + blog.ID)
	utils.Created(ctx, gin.H{"post": post})
}

// ListPosts returns a blog's posts, newest first, paginated, optionally
// filtered by exact category. Public.
func (p *PostController) ListPosts(ctx *gin.Context) {
	blogID, ok := requireID(ctx, "id")
	if !ok {
		return
	}
	page, limit, ok := parsePagination(ctx)
	if !ok {
		return
	}
	category := strings.TrimSpace(ctx.Query("category"))

	cacheKey := fmt.Sprintf("cache:posts:list:%s:cat=%s:page=%d:limit=%d", blogID, category, page, limit)
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var blogCount int64
	if err := p.db.Model(&models.Blog{}).Where("id = ?", blogID).Count(&blogCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load blog")
		return
	}
	if blogCount == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
		return
	}

	query := p.db.Model(&models.Post{}).Where("blog_id = ?", blogID)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to list posts")
		return
	}

	payload := gin.H{
		"posts": posts,
		"total": total,
		"page":  page,
		"pages": (total + int64(limit) - 1) / int64(limit),
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 0)
	utils.Success(ctx, payload)
}

// GetPost returns a single post (public).
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	if cached, ok := utils.CacheGetBytes("cache:post:detail:" + postID); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load post")
		return
	}

	payload := gin.H{"post": post}
	utils.CacheSetJSON("cache:post:detail:"+postID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 0)
	utils.Success(ctx, payload)
}

// UpdatePost partially updates a post owned by the caller. A provided
// category is re-validated against the blog's current set.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Title    *string `json:"title"`
		Excerpt  *string `json:"excerpt"`
		Content  *string `json:"content"`
		Category *string `json:"category"`
		ImageURL *string `json:"image_url"`
		Author   *string `json:"author"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid request payload")
		return
	}

	post, ok := loadOwnedPost(p.db, ctx, admin, postID)
	if !ok {
		return
	}

	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
			return
		}
		post.Title = title
	}
	if req.Excerpt != nil {
		post.Excerpt = utils.Sanitize(*req.Excerpt)
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40032, "content cannot be empty")
			return
		}
		post.Content = content
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category != "" {
			// Membership is checked against the current set on every update,
			// not cached: the blog's allowed set changes independently.
			var blog models.Blog
			if err := p.db.First(&blog, "id = ?", post.BlogID).Error; err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load blog")
				return
			}
			if !categoryAllowed(blog, category) {
				utils.Error(ctx, http.StatusBadRequest, 40033, categoryErrorMessage(blog, category))
				return
			}
		}
		post.Category = category
	}
	if req.ImageURL != nil {
		post.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Author != nil {
		author := utils.Sanitize(strings.TrimSpace(*req.Author))
		if author == "" {
			author = "Admin"
		}
		post.Author = author
	}

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:" + post.BlogID)
	utils.InvalidateByPrefix("cache:post:detail:" + postID)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post owned by the caller and cascades to its
// comments, post row first. Comment delete failures after the post commit
// are logged, not surfaced.
func (p *PostController) DeletePost(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	post, ok := loadOwnedPost(p.db, ctx, admin, postID)
	if !ok {
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to delete post")
		return
	}
	if err := p.db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		utils.Sugar.Errorf("cascade: failed to delete comments of post %s: %v", postID, err)
	}

	utils.InvalidateByPrefix("cache:posts:list:" + post.BlogID)
	utils.InvalidateByPrefix("cache:post:detail:" + postID)
	utils.InvalidateByPrefix("cache:comments:" + postID)
	utils.Success(ctx, gin.H{"message": "post and associated comments deleted"})
}

// LikePost atomically increments the like counter. Anonymous, unlimited and
// deliberately without deduplication: likes are a counter, not a vote.
func (p *PostController) LikePost(ctx *gin.Context) {
	postID, ok := requireID(ctx, "id")
	if !ok {
		return
	}

	res := p.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to like post")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40411, "post not found")
		return
	}

	var post models.Post
	if err := p.db.Select("likes").First(&post, "id = ?", postID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to load like count")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + postID)
	utils.Success(ctx, gin.H{"likes": post.Likes})
}

// categoryAllowed reports whether the category may be used for a post of the
// blog. The empty category is always allowed.
func categoryAllowed(blog models.Blog, category string) bool {
	return category == "" || blog.Categories.Contains(category)
}

func categoryErrorMessage(blog models.Blog, category string) string {
	allowed := "none"
	if len(blog.Categories) > 0 {
		allowed = strings.Join(blog.Categories, ", ")
	}
	return fmt.Sprintf("category %q is not in the blog's category set (allowed: %s)", category, allowed)
}

// parsePagination reads page and limit query values. Absent values default
// to 1/10; present but out-of-range values are a client error, not clamped.
func parsePagination(ctx *gin.Context) (int, int, bool) {
	page, limit := 1, 10

	if raw := strings.TrimSpace(ctx.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.Error(ctx, http.StatusBadRequest, 40035, "page must be an integer >= 1")
			return 0, 0, false
		}
		page = n
	}
	if raw := strings.TrimSpace(ctx.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			utils.Error(ctx, http.StatusBadRequest, 40036, "limit must be an integer between 1 and 100")
			return 0, 0, false
		}
		limit = n
	}
	return page, limit, true
}
