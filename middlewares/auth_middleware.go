package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/utils"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" and puts the user,
// restaurant and role of the token into the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if !authenticate(c, tokenString) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate validates the token and stores its claims in the context.
func authenticate(c *gin.Context, tokenString string) bool {
	claims, err := utils.ValidateToken(tokenString)
	if err != nil || claims.UserID == "" || claims.RestaurantID == "" {
		return false
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	c.Set(utils.CtxUserID, claims.UserID)
	c.Set(utils.CtxRestaurantID, claims.RestaurantID)
	c.Set(utils.CtxRole, claims.Role)
	c.Set(utils.CtxToken, tokenString)
	c.Set(utils.CtxTokenExpiry, expiresAt)
	return true
}
