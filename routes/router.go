package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Olga07122007/yatube-project/cache"
	"github.com/Olga07122007/yatube-project/config"
	"github.com/Olga07122007/yatube-project/controllers"
	"github.com/Olga07122007/yatube-project/middleware"
	"github.com/Olga07122007/yatube-project/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The page
// cache store is injected so tests can swap Redis for memory.
func SetupRouter(db *gorm.DB, store cache.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with the file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.CurrentUser())

	r.LoadHTMLGlob(cfg.TemplateGlob)
	r.Static("/static", "./static")

	postController := controllers.NewPostController(db)
	followController := controllers.NewFollowController(db)
	authController := controllers.NewAuthController(db)
	groupController := controllers.NewGroupController(db)

	// The global index is the only cached page.
	indexTTL := time.Duration(cfg.IndexCacheTTLSeconds) * time.Second
	r.GET("/", middleware.CachePage(store, cfg.CacheKeyPrefix, indexTTL), postController.Index)

	r.GET("/group/:slug", postController.GroupPosts)
	r.GET("/profile/:username", postController.Profile)
	r.GET("/posts/:id", postController.PostDetail)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.GET("/signup", authController.SignupForm)
	authGroup.POST("/signup", authController.Signup)
	authGroup.GET("/login", authController.LoginForm)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/logout", authController.Logout)
	authGroup.GET("/password_reset", authController.PasswordResetForm)
	authGroup.POST("/password_reset", authController.PasswordReset)
	authGroup.GET("/password_reset/confirm", authController.PasswordResetConfirmForm)
	authGroup.POST("/password_reset/confirm", authController.PasswordResetConfirm)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/create", postController.PostCreateForm)
	protected.POST("/create", postController.PostCreate)
	protected.GET("/posts/:id/edit", postController.PostEditForm)
	protected.POST("/posts/:id/edit", postController.PostEdit)
	protected.POST("/posts/:id/comment", postController.AddComment)
	protected.GET("/follow", followController.FollowIndex)
	protected.GET("/profile/:username/follow", followController.Follow)
	protected.GET("/profile/:username/unfollow", followController.Unfollow)
	protected.GET("/groups/create", groupController.CreateForm)
	protected.POST("/groups/create", groupController.Create)
	protected.GET("/auth/password_change", authController.PasswordChangeForm)
	protected.POST("/auth/password_change", authController.PasswordChange)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx)
	})

	return r
}
