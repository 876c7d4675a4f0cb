package middlewares

import (
	"net/http"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/models"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware restores the user session cached at login. The token
// header is looked up in redis; a hit populates the request context with the
// caller's identity and business id for the models layer.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token header is required"})
			return
		}

		var session models.UserSession
		found, err := config.GetRedisObject("Token:"+token, &session)
		if err != nil {
			config.LogError(config.GetLogger(), "middlewares", "SessionMiddleware", "redis lookup", nil, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if !found {
			// fall back to the JWT itself when redis lost the session
			jwtToken, jwtErr := utils.JwtValidate(token)
			if jwtErr != nil || !jwtToken.Valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			claims, ok := jwtToken.Claims.(*utils.JwtCustomClaim)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
				return
			}
			session = models.UserSession{
				UserId:     claims.ID,
				BusinessId: claims.BusinessId,
				Role:       models.UserRole(claims.Role),
			}
		}

		ctx := c.Request.Context()
		ctx = utils.SetTokenInContext(ctx, token)
		ctx = utils.SetBusinessIdInContext(ctx, session.BusinessId)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		ctx = utils.SetUsernameInContext(ctx, session.Username)
		ctx = utils.SetUserNameInContext(ctx, session.Name)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
