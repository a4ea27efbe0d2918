package middleware

import (
	"net/http"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/gin-gonic/gin"
)

// RequirePermission aborts with 403 unless the authenticated user's role
// grants the named permission. Must run after AuthMiddleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(*models.ClubUser)

		if !ok || !user.HasPermission(permission) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}

		ctx.Next()
	}
}

// RequireAnyPermission passes when the user holds at least one of the named
// permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(*models.ClubUser)

		if ok {
			for _, permission := range permissions {
				if user.HasPermission(permission) {
					ctx.Next()
					return
				}
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}
