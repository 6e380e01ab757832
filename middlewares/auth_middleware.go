package middlewares

import (
	"net/http"
	"strings"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

// TokenParser validates an access token.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// AuthMiddleware requires a "Bearer <token>" Authorization header and puts
// user_id and email into the gin context.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return authenticate(parser, false)
}

// QueryTokenAuthMiddleware also accepts ?token=<token>, for websocket
// clients that cannot set headers.
func QueryTokenAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return authenticate(parser, true)
}

func authenticate(parser TokenParser, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				utils.RespondMessage(c, http.StatusUnauthorized, "Invalid authorization format")
				c.Abort()
				return
			}
			tokenString = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		} else if allowQuery {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			utils.RespondMessage(c, http.StatusUnauthorized, "Authorization header missing")
			c.Abort()
			return
		}

		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Warn("Rejected token")
			utils.RespondMessage(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
