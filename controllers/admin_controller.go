package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/middleware"
	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/utils"
)

// AdminController handles account registration and session management.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// Register creates a new admin account with a bcrypt password hash.
func (a *AdminController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email, password and name are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email, password and name are required")
		return
	}

	var existing models.Admin
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check email")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         utils.Sanitize(name),
	}
	if err := a.db.Create(&admin).Error; err != nil {
		// The unique index backs up the pre-check under concurrent registration.
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	utils.Created(ctx, gin.H{"admin": admin})
}

// Login verifies credentials and issues a fresh opaque session token,
// replacing any previously issued one for this admin.
func (a *AdminController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	var admin models.Admin
	err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&admin).Error
	if err != nil {
		// Same message as a password mismatch; do not reveal which part failed.
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid email or password")
		return
	}
	if !utils.CheckPassword(admin.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid email or password")
		return
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"session_token": token,
		"last_login_at": now,
	}
	if err := a.db.Model(&admin).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to persist session")
		return
	}
	admin.SessionToken = token
	admin.LastLoginAt = &now

	utils.Success(ctx, gin.H{"token": token, "admin": admin})
}

// Logout clears the stored session token; the presented token stops
// authenticating immediately.
func (a *AdminController) Logout(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}

	if err := a.db.Model(&admin).Update("session_token", "").Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to clear session")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Profile returns the current admin without any credential material.
func (a *AdminController) Profile(ctx *gin.Context) {
	admin, ok := middleware.CurrentAdmin(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
		return
	}
	utils.Success(ctx, gin.H{"admin": admin})
}
