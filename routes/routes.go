package routes

import (
	"net/http"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/handlers"
	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the route tree needs, built once in main.
type Deps struct {
	Tokens *auth.Issuer
	Users  *store.Users

	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Courses   *handlers.CourseHandler
	Menu      *handlers.MenuHandler
	Orders    *handlers.OrderHandler
	UserAdmin *handlers.UserAdminHandler
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authRequired := middleware.AuthRequired(d.Tokens, d.Users)
	superOnly := middleware.RoleRequired(models.RoleSuperuser)
	staffOnly := middleware.RoleRequired(
		models.RoleKitchen, models.RoleCashier, models.RoleAdmin, models.RoleSuperuser)
	menuWriters := middleware.RoleRequired(models.RoleAdmin, models.RoleSuperuser)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		public.POST("/auth/register", d.Auth.Register)
		public.POST("/auth/login", d.Auth.Login)
		public.POST("/auth/forgot-password", d.Auth.ForgotPassword)
		public.POST("/auth/verify-reset-code", d.Auth.VerifyResetCode)
		public.POST("/auth/reset-password", d.Auth.ResetPassword)

		public.GET("/courses", d.Courses.ListCourses)
		public.GET("/menu", d.Menu.ListMenu)

		// State machine info for API consumers
		public.GET("/state-machine", handlers.GetStateMachineInfo)

		// Guest orders need no account
		public.POST("/orders", d.Orders.CreateOrder)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(authRequired)
	{
		authed.GET("/auth/me", d.Auth.Me)
		authed.GET("/profile", d.Profile.GetProfile)
		authed.PUT("/profile", d.Profile.UpdateProfile)
		authed.PUT("/profile/password", d.Profile.ChangePassword)

		authed.GET("/courses/my-courses", d.Courses.MyCourses)

		authed.POST("/orders/user", d.Orders.CreateUserOrder)
		authed.GET("/orders/my-orders", d.Orders.MyOrders)
		authed.GET("/orders/:id", d.Orders.GetOrder)
		// The state machine limits members to cancelling their own
		// pending orders; staff roles get the full flow
		authed.PATCH("/orders/:id/status", d.Orders.UpdateOrderStatus)
	}

	// ── Staff routes (kitchen / cashier / admin / superuser) ───────
	staff := r.Group("/api")
	staff.Use(authRequired, staffOnly)
	{
		staff.GET("/orders", d.Orders.ListOrders)
	}

	// ── Menu management (admin scoped to courses, superuser all) ───
	menu := r.Group("/api/menu")
	menu.Use(authRequired, menuWriters)
	{
		menu.POST("", d.Menu.CreateMenuItem)
		menu.PUT("/:id", d.Menu.UpdateMenuItem)
		menu.DELETE("/:id", d.Menu.DeleteMenuItem)
	}

	// ── Superuser routes ───────────────────────────────────────────
	super := r.Group("/api")
	super.Use(authRequired, superOnly)
	{
		super.GET("/courses/all", d.Courses.AllCourses)
		super.POST("/courses", d.Courses.CreateCourse)
		super.PUT("/courses/:id", d.Courses.UpdateCourse)
		super.DELETE("/courses/:id", d.Courses.DeleteCourse)

		super.PUT("/orders/:id", d.Orders.UpdateOrder)
		super.DELETE("/orders/:id", d.Orders.DeleteOrder)

		super.GET("/users", d.UserAdmin.ListUsers)
		super.POST("/users/create", d.UserAdmin.CreateUser)
		super.PUT("/users/:id", d.UserAdmin.UpdateUser)
		super.DELETE("/users/:id", d.UserAdmin.DeleteUser)
		super.POST("/users/:id/approve", d.UserAdmin.ApproveUser)
		super.POST("/users/:id/reject", d.UserAdmin.RejectUser)
		super.PUT("/users/:id/role", d.UserAdmin.SetRole)
		super.PUT("/users/:id/courses", d.UserAdmin.SetCourses)
		super.PUT("/users/:id/default-course", d.UserAdmin.SetDefaultCourse)
	}
}
