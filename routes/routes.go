package routes

import (
	"net/http"

	"blog/controllers"
	"blog/middleware"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Posts *controllers.PostController
	Auth  *controllers.AuthController
	Users *controllers.UserController
	Admin *controllers.AdminController
	API   *controllers.APIController
}

func SetupRoutes(r *gin.Engine, ctl Controllers, mediaDir string, corsOrigins []string) {
	r.Use(middleware.CORS("/api/", corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Static("/media", mediaDir)
	r.NoRoute(controllers.NotFound)

	r.GET("/", ctl.Posts.List)
	r.GET("/category/:id/", ctl.Posts.CategoryPosts)
	r.GET("/tag/:id/", ctl.Posts.TagPosts)
	r.GET("/author/:username/", ctl.Posts.AuthorPosts)

	post := r.Group("/post")
	{
		post.GET("/:id/", ctl.Posts.Detail)
		post.POST("/:id/", middleware.LoginRequired(), ctl.Posts.AddComment)

		authed := post.Group("", middleware.LoginRequired())
		authed.GET("/new/", ctl.Posts.New)
		authed.POST("/new/", ctl.Posts.Create)
		authed.GET("/:id/edit/", ctl.Posts.Edit)
		authed.POST("/:id/edit/", ctl.Posts.Update)
		authed.GET("/:id/delete/", ctl.Posts.ConfirmDelete)
		authed.POST("/:id/delete/", ctl.Posts.Delete)
	}

	r.GET("/register/", ctl.Auth.RegisterPage)
	r.POST("/register/", ctl.Auth.Register)
	r.GET("/login/", ctl.Auth.LoginPage)
	r.POST("/login/", ctl.Auth.Login)
	r.POST("/logout/", ctl.Auth.Logout)

	account := r.Group("/password_change", middleware.LoginRequired())
	{
		account.GET("/", ctl.Auth.PasswordChangePage)
		account.POST("/", ctl.Auth.PasswordChange)
		account.GET("/done/", ctl.Auth.PasswordChangeDone)
	}

	r.GET("/password_reset/", ctl.Auth.PasswordResetPage)
	r.POST("/password_reset/", ctl.Auth.PasswordReset)
	r.GET("/password_reset/done/", ctl.Auth.PasswordResetDone)
	r.GET("/reset/done/", ctl.Auth.ResetComplete)
	r.GET("/reset/:token/", ctl.Auth.ResetConfirmPage)
	r.POST("/reset/:token/", ctl.Auth.ResetConfirm)

	admin := r.Group("/admin", middleware.StaffRequired(controllers.Forbidden))
	{
		admin.GET("/", ctl.Admin.Index)
		admin.GET("/:model/", ctl.Admin.List)
		admin.GET("/:model/add/", ctl.Admin.AddPage)
		admin.POST("/:model/add/", ctl.Admin.Add)
		admin.POST("/:model/:id/delete/", ctl.Admin.Delete)
		admin.POST("/:model/:id/toggle/", ctl.Admin.ToggleActive)
	}

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/token", ctl.Auth.Token)
			auth.GET("/me", middleware.APIAuthRequired(), ctl.Auth.Me)
		}

		api.GET("/posts", ctl.API.ListPosts)
		api.GET("/posts/:id", ctl.API.GetPost)
		api.GET("/posts/:id/comments", ctl.API.ListComments)
		api.POST("/posts/:id/comments", middleware.APIAuthRequired(), ctl.API.CreateComment)
		api.GET("/categories", ctl.API.ListCategories)
		api.GET("/tags", ctl.API.ListTags)

		api.GET("/users/:username", ctl.Users.GetUser)
		api.GET("/users/:username/posts", ctl.Users.GetUserPosts)
	}
}
