package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Olga07122007/yatube-project/utils"
)

// LoginPath is where unauthenticated write attempts get redirected,
// carrying the original destination in the next parameter.
const LoginPath = "/auth/login"

// sessionToken extracts the session token from the cookie set at login,
// falling back to an Authorization bearer header for non-browser clients.
func sessionToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(utils.SessionCookie); err == nil && token != "" {
		return token
	}
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser resolves the viewer from the session token when present.
// It never blocks the request; anonymous browsing stays allowed.
func CurrentUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		if token == "" || utils.IsTokenBlacklisted(token) {
			ctx.Next()
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Set(utils.ViewerIDKey, claims.UserID)
		ctx.Set(utils.ViewerNameKey, claims.Username)
		ctx.Next()
	}
}

// AuthRequired redirects anonymous requests to the login page with a
// next parameter equal to the originally requested path.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := ctx.Get(utils.ViewerIDKey); ok {
			ctx.Next()
			return
		}
		target := LoginPath + "?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
		ctx.Redirect(http.StatusFound, target)
		ctx.Abort()
	}
}

// ViewerID returns the authenticated user's ID from the context.
func ViewerID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(utils.ViewerIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// ViewerName returns the authenticated user's username from the context.
func ViewerName(ctx *gin.Context) string {
	value, exists := ctx.Get(utils.ViewerNameKey)
	if !exists {
		return ""
	}
	name, _ := value.(string)
	return name
}
