package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/service"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIResponse{Message: message})
}

// AuthMiddleware verifies the bearer token, rejects invalidated and
// non-access tokens, and stashes the caller identity in the context.
func AuthMiddleware(secret string, tokens service.TokenStore) gin.HandlerFunc {
	secretBytes := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Unauthorized")
			return
		}

		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secretBytes, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid claims")
			return
		}

		if typ, _ := claims["typ"].(string); typ != service.TokenTypeAccess {
			abortUnauthorized(c, "Invalid token")
			return
		}

		jti, _ := claims["jti"].(string)
		if jti == "" {
			abortUnauthorized(c, "Invalid token")
			return
		}
		revoked, err := tokens.IsInvalidated(c.Request.Context(), jti)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.APIResponse{Message: "Unknown error"})
			return
		}
		if revoked {
			abortUnauthorized(c, "Invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abortUnauthorized(c, "Invalid user id")
			return
		}

		role, _ := claims["role"].(string)
		c.Set("userID", userID)
		c.Set("userRole", model.Role(role))
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.APIResponse{Message: "Admin only"})
			return
		}
		c.Next()
	}
}

func UserOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != model.RoleUser {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.APIResponse{Message: "Customers only"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get("userID")
	uid, _ := id.(uuid.UUID)
	return uid
}

func GetUserRole(c *gin.Context) model.Role {
	role, _ := c.Get("userRole")
	r, _ := role.(model.Role)
	return r
}
