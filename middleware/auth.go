package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/utils"
)

// ContextAdminKey is the key used to store the authenticated admin in Gin context.
const ContextAdminKey = "admin"

// AuthRequired resolves the bearer token to the admin whose stored session
// token matches it. A new login rotates the stored token, so any previously
// issued token stops matching here. The lookup is read-only and runs before
// every admin-only handler.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		var admin models.Admin
		err := db.Where("session_token = ? AND session_token <> ''", token).First(&admin).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid or expired token")
			} else {
				utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to authenticate")
			}
			ctx.Abort()
			return
		}

		ctx.Set(ContextAdminKey, admin)
		ctx.Next()
	}
}

// CurrentAdmin returns the authenticated admin placed into the context by
// AuthRequired.
func CurrentAdmin(ctx *gin.Context) (models.Admin, bool) {
	value, exists := ctx.Get(ContextAdminKey)
	if !exists {
		return models.Admin{}, false
	}
	admin, ok := value.(models.Admin)
	return admin, ok
}
