package middleware

import (
	"net/http"
	"strings"

	"sociomate/auth"
	"sociomate/logging"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const actorKey = "userId"

// Authenticate requires a valid bearer token and stores the caller's id
// in the gin context.
func Authenticate(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip for CORS preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		sub, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}
		id, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}

		c.Set(actorKey, id)
		c.Next()
	}
}

// Actor returns the id stored by Authenticate.
func Actor(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
