package routes

import (
	"github.com/gin-gonic/gin"

	"resumebuilder/internal/handlers"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authService services.AuthService,
	userService services.UserService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	resumeHandler *handlers.ResumeHandler,
	templates *handlers.Resource[models.Template],
	adminUsers *handlers.Resource[models.User],
) *gin.Engine {

	api := r.Group("/api/v1")
	authGate := middleware.Authenticate(authService, userService)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// ---- public
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/signin", authHandler.Signin)
		auth.POST("/signout", authGate, authHandler.Signout)
		auth.POST("/forgotPassword", authHandler.ForgotPassword)
		auth.PATCH("/resetPassword/:token", authHandler.ResetPassword)
		auth.PATCH("/changePassword", authGate, authHandler.ChangePassword)
	}

	// USERS
	users := api.Group("/users")
	{
		// reactivation stays public: a deactivated account cannot sign in
		users.POST("/reactivateAccount", userHandler.RequestReactivate)
		users.PATCH("/reactivateMe/:token", userHandler.Reactivate)

		me := users.Group("", authGate)
		{
			me.GET("/me", userHandler.GetMe)
			me.PATCH("/updateMe", userHandler.UpdateMe)
			me.DELETE("/deleteMe", userHandler.DeleteMe)
		}

		admin := users.Group("", authGate, adminOnly)
		{
			admin.GET("", adminUsers.GetAll)
			admin.GET("/:id", adminUsers.GetOne)
			admin.PATCH("/:id", adminUsers.UpdateOne)
			admin.DELETE("/:id", adminUsers.DeleteOne)
		}
	}

	// RESUMES (owner-scoped)
	resumes := api.Group("/resumes", authGate)
	{
		resumes.GET("/getMyResume", resumeHandler.GetMine)
		resumes.POST("", resumeHandler.CreateOne)
		resumes.GET("", resumeHandler.GetAll)
		resumes.GET("/:id", resumeHandler.GetOne)
		resumes.PATCH("/:id", resumeHandler.UpdateOne)
		resumes.DELETE("/:id", resumeHandler.DeleteOne)
		resumes.GET("/:id/export", resumeHandler.Export)
	}

	// TEMPLATES (public catalog, admin writes)
	tpl := api.Group("/templates")
	{
		tpl.GET("", templates.GetAll)
		tpl.GET("/:id", templates.GetOne)

		write := tpl.Group("", authGate, adminOnly)
		{
			write.POST("", templates.CreateOne)
			write.PATCH("/:id", templates.UpdateOne)
			write.DELETE("/:id", templates.DeleteOne)
		}
	}

	return r
}
