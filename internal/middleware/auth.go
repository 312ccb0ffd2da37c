package middleware

import (
	"net/http"
	"strings"
	"sync"

	"storepos/internal/model"
	"storepos/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

// InitAuth sets the signing key used to verify bearer tokens.
func InitAuth(secret []byte) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = secret
}

// GetJWTSecret returns the key set by InitAuth.
func GetJWTSecret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return jwtSecret
}

// tokenFromRequest reads the access_token cookie, falling back to the Authorization header.
func tokenFromRequest(c *gin.Context) (string, string) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
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

// ParseToken verifies an HMAC token and returns its subject and role claims.
func ParseToken(tokenString string) (string, model.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	roleName, _ := claims["role"].(string)
	role, err := model.ParseRole(roleName)
	if err != nil {
		return "", "", err
	}
	return sub, role, nil
}

// RequireCapability validates the JWT and checks that the caller's role grants
// every listed capability. With no capabilities it only authenticates.
func RequireCapability(required ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := tokenFromRequest(c)
		if problem != "" {
			response.Abort(c, http.StatusUnauthorized, problem)
			return
		}

		sub, role, err := ParseToken(tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set("userID", sub)
		c.Set("userRole", string(role))

		for _, capability := range required {
			if !role.Can(capability) {
				response.Abort(c, http.StatusForbidden, "Access denied: missing permission '"+string(capability)+"'")
				return
			}
		}

		c.Next()
	}
}

// CurrentRole returns the role stored by RequireCapability.
func CurrentRole(c *gin.Context) model.Role {
	return model.Role(c.GetString("userRole"))
}

// SetTokenCookie stores the access token as an HttpOnly cookie. Release mode
// assumes a cross-origin frontend and marks it Secure with SameSite=None.
func SetTokenCookie(c *gin.Context, token string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if gin.Mode() == gin.ReleaseMode {
		sameSite = http.SameSiteNoneMode
		secure = true
	}
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie.
func ClearTokenCookie(c *gin.Context) {
	SetTokenCookie(c, "", -1)
}
