package routes

import (
	"blog/config"
	"blog/controllers"
	"blog/middleware"
	"blog/services"
	"blog/templates"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "blog/docs"
)

// NewRouter wires services, controllers and middleware into a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, mailer services.Mailer) (*gin.Engine, error) {
	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	images := services.NewDiskImageStore(cfg.MediaDir)
	userService := services.NewUserService(db)
	postService := services.NewPostService(db, images)
	commentService := services.NewCommentService(db)
	taxonomyService := services.NewTaxonomyService(db)
	resetService := services.NewPasswordResetService(userService, mailer, cfg.JWTSecret, cfg.SiteURL)
	adminService := services.NewAdminService(db, services.DefaultModelAdmins(), postService, commentService, taxonomyService)

	sessions := controllers.Sessions{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}

	r := gin.New()
	r.HTMLRender = renderer
	r.MaxMultipartMemory = services.MaxImageSize + 1<<20

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery(controllers.InternalError))
	r.Use(middleware.LoadUser(cfg.JWTSecret, userService))

	SetupRoutes(r, Controllers{
		Posts: controllers.NewPostController(postService, commentService, taxonomyService, userService),
		Auth:  controllers.NewAuthController(userService, resetService, sessions),
		Users: controllers.NewUserController(userService, postService),
		Admin: controllers.NewAdminController(adminService, taxonomyService),
		API:   controllers.NewAPIController(postService, commentService, taxonomyService),
	}, cfg.MediaDir, cfg.CORSOrigins)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, nil
}
