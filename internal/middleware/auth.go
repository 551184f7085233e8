package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"vastustructural/internal/model"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by RequireRole
const (
	KeyUserID   = "userID"
	KeyUserRole = "userRole"
	KeyUserName = "userName"

	accessTokenCookie = "access_token"
)

var errMissingRole = errors.New("role not found in token")

// secureCookies mirrors the deployment: cross-origin production needs SameSite=None + Secure.
func secureCookies() (http.SameSite, bool) {
	if gin.Mode() == gin.ReleaseMode {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookie stores the access token as an HttpOnly cookie for browser portals
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	sameSite, secure := secureCookies()
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite, secure := secureCookies()
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", secure, true)
}

// ParseToken verifies an HS256 token and returns its claims.
// Expiry is checked by the jwt parser.
func ParseToken(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, ok := claims["role"].(string); !ok {
		return nil, errMissingRole
	}
	return claims, nil
}

func tokenFromRequest(c *gin.Context) (string, string) {
	// Try cookie first, fallback to Authorization header
	if tokenString, err := c.Cookie(accessTokenCookie); err == nil && tokenString != "" {
		return tokenString, ""
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// RequireRole validates the JWT and checks that its role is one of allowedRoles
func RequireRole(secret []byte, allowedRoles ...model.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := tokenFromRequest(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		userRole := model.ActorRole(claims["role"].(string))
		roleAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		sub, _ := claims["sub"].(string)
		name, _ := claims["name"].(string)
		c.Set(KeyUserID, sub)
		c.Set(KeyUserRole, userRole)
		c.Set(KeyUserName, name)

		c.Next()
	}
}

// Identity returns what RequireRole stored for the current request.
func Identity(c *gin.Context) (id string, role model.ActorRole, name string) {
	id = c.GetString(KeyUserID)
	name = c.GetString(KeyUserName)
	if v, ok := c.Get(KeyUserRole); ok {
		role, _ = v.(model.ActorRole)
	}
	return id, role, name
}
