package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"civic-reports-service/models"
)

const authorKey = "author"

// Author returns the authenticated author of the request, if any.
func Author(c *gin.Context) (models.Author, bool) {
	v, ok := c.Get(authorKey)
	if !ok {
		return models.Author{}, false
	}
	author, ok := v.(models.Author)
	return author, ok
}

// AuthMiddleware validates a Bearer JWT and stores the author context on
// the request. Requests without a token pass through anonymously; handlers
// requiring identity use RequireAuth/RequireRole.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := extractToken(authHeader)
		if tokenString == "" {
			log.Warnf("Invalid authorization format from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		author, err := parseAuthor(tokenString, secret)
		if err != nil {
			log.Warnf("Invalid token from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(authorKey, author)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Author(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole gates an endpoint on the author's role. The capability check
// lives here, in front of the catalog, never inside it.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		author, ok := Author(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if author.Role != role {
			log.Warnf("User %s with role %q denied %s access", author.ID, author.Role, role)
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func parseAuthor(tokenString, secret string) (models.Author, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return models.Author{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Author{}, fmt.Errorf("invalid token claims")
	}

	author := models.Author{}
	if sub, ok := claims["sub"].(string); ok {
		author.ID = sub
	}
	if name, ok := claims["name"].(string); ok {
		author.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		author.Role = role
	}
	if author.ID == "" {
		return models.Author{}, fmt.Errorf("token carries no subject")
	}
	return author, nil
}
