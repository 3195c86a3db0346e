package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appsvc "isu-photo-board/internal/app"
	"isu-photo-board/internal/bootstrap"
	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/platform/rabbitmq"
	"isu-photo-board/internal/repository"
	"isu-photo-board/internal/session"
	"isu-photo-board/internal/transport/http/handler"
	"isu-photo-board/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.SetFuncMap(templateFuncs())
	router.LoadHTMLGlob("web/templates/*.html")
	router.Use(staticCacheControl())
	router.Static("/css", "web/public/css")
	router.Static("/js", "web/public/js")
	router.Static("/img", "web/public/img")
	router.StaticFile("/favicon.ico", "web/public/favicon.ico")

	userRepo := repository.NewUserRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)
	commentRepo := repository.NewCommentRepository(app.MySQL)

	boardCache := cache.NewBoardCache(
		app.Redis,
		app.Log,
		time.Duration(app.Config.Cache.ShortTTLSeconds)*time.Second,
		time.Duration(app.Config.Cache.MediumTTLSeconds)*time.Second,
		time.Duration(app.Config.Cache.ImageTTLSeconds)*time.Second,
	)
	sessionStore := session.NewStore(app.Redis, time.Duration(app.Config.Session.TTLHours)*time.Hour)

	var publisher *rabbitmq.InvalidationPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewInvalidationPublisher(app.MQConn, app.Config.RabbitMQ.InvalidateQueue)
	}
	var invalidator *appsvc.Invalidator
	if publisher != nil {
		invalidator = appsvc.NewInvalidator(publisher, boardCache, app.Log)
	} else {
		invalidator = appsvc.NewInvalidator(nil, boardCache, app.Log)
	}

	authService := appsvc.NewAuthService(userRepo, boardCache, app.Log)
	postService := appsvc.NewPostService(postRepo, commentRepo, userRepo, boardCache, invalidator, app.Log, app.Config.Upload.MaxBytes)
	adminService := appsvc.NewAdminService(userRepo, invalidator, app.Log)

	authHandler := handler.NewAuthHandler(authService, sessionStore, app.Config.Session, app.Log)
	postHandler := handler.NewPostHandler(postService, app.Config.Upload.MaxBytes, app.Log)
	commentHandler := handler.NewCommentHandler(postService, app.Log)
	imageHandler := handler.NewImageHandler(postService, app.Log)
	adminHandler := handler.NewAdminHandler(adminService, app.Log)
	initializeHandler := handler.NewInitializeHandler(app.MySQL, app.Log)
	healthHandler := handler.NewHealthHandler(app.StartedAt)

	router.Use(middleware.ResolveSession(
		app.Config.Session.CookieName,
		app.Config.Session.Secret,
		sessionStore,
		authService,
		app.Log,
	))

	router.GET("/healthz", healthHandler.Check)
	router.GET("/initialize", initializeHandler.GetInitialize)

	router.GET("/login", authHandler.GetLogin)
	router.POST("/login", authHandler.PostLogin)
	router.GET("/register", authHandler.GetRegister)
	router.POST("/register", authHandler.PostRegister)
	router.GET("/logout", authHandler.GetLogout)

	router.GET("/", postHandler.GetIndex)
	router.POST("/", postHandler.PostIndex)
	router.GET("/posts", postHandler.GetPosts)
	router.GET("/posts/:id", postHandler.GetPostByID)
	router.GET("/image/:filename", imageHandler.GetImage)
	router.POST("/comment", commentHandler.PostComment)

	router.GET("/admin/banned", adminHandler.GetBanned)
	router.POST("/admin/banned", adminHandler.PostBanned)

	// Profile pages live at /@{account_name}; gin cannot mix a literal
	// prefix and a param in one segment, so they fall through to here.
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method == "GET" && strings.HasPrefix(path, "/@") {
			accountName := strings.TrimPrefix(path, "/@")
			if accountName != "" && !strings.Contains(accountName, "/") {
				postHandler.GetUserPage(c, accountName)
				return
			}
		}
		c.String(404, "404 not found")
	})

	return router
}

// staticCacheControl marks the immutable assets long-lived for any proxy
// in front of the app.
func staticCacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/css/") || strings.HasPrefix(path, "/js/") ||
			strings.HasPrefix(path, "/img/") || path == "/favicon.ico" ||
			strings.HasPrefix(path, "/image/") {
			c.Header("Cache-Control", "public, max-age=31536000")
		}
		c.Next()
	}
}
