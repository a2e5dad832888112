package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/config"
	"github.com/cppla/multiblog/controllers"
	"github.com/cppla/multiblog/middleware"
	"github.com/cppla/multiblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.AccessLog(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	adminController := controllers.NewAdminController(db)
	blogController := controllers.NewBlogController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)

	api := r.Group("/api/v1")
	authed := middleware.AuthRequired(db)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.RateLimitMiddleware())
	adminGroup.POST("/register", adminController.Register)
	adminGroup.POST("/login", adminController.Login)
	adminGroup.POST("/logout", authed, adminController.Logout)
	adminGroup.GET("/profile", authed, adminController.Profile)

	api.POST("/blogs", authed, blogController.CreateBlog)
	api.GET("/blogs", authed, blogController.ListMyBlogs)
	api.GET("/blogs/:id", blogController.GetBlog)
	api.PUT("/blogs/:id", authed, blogController.UpdateBlog)
	api.DELETE("/blogs/:id", authed, blogController.DeleteBlog)

	api.POST("/blogs/:id/posts", authed, postController.CreatePost)
	api.GET("/blogs/:id/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.PUT("/posts/:id", authed, postController.UpdatePost)
	api.DELETE("/posts/:id", authed, postController.DeletePost)
	api.POST("/posts/:id/like", postController.LikePost)

	api.POST("/posts/:id/comments", commentController.CreateComment)
	api.GET("/posts/:id/comments", commentController.ListComments)
	api.DELETE("/comments/:id", authed, commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
