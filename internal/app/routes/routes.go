package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/controllers"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Catalog    *controllers.CatalogController
	Student    *controllers.StudentController
	College    *controllers.CollegeController
	Company    *controllers.CompanyController
	Admin      *controllers.AdminController
	Connection *controllers.ConnectionController
	Inquiry    *controllers.InquiryController
	Notify     *controllers.NotificationController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// --- Auth (bare JSON bodies, consumed by the session client) ---
	auth := router.Group("/auth")
	{
		auth.POST("/signup", ctrl.Auth.Signup)
		auth.POST("/login", ctrl.Auth.Login)
		auth.GET("/user", ctrl.Auth.CurrentUser)
		auth.GET("/logout", ctrl.Auth.Logout)
	}

	api := router.Group("/api")

	// --- Public catalog ---
	api.GET("/events", ctrl.Catalog.ListEvents)
	api.GET("/events/:id", ctrl.Catalog.GetEvent)
	api.GET("/opportunities", ctrl.Catalog.ListOpportunities)
	api.GET("/opportunities/:id", ctrl.Catalog.GetOpportunity)

	// --- Any signed-in account ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	users := authenticated.Group("/users")
	{
		users.GET("/me", ctrl.User.GetMe)
		users.PUT("/me", ctrl.User.UpdateMe)
		users.POST("/me/avatar", ctrl.User.UploadAvatar)
		users.GET("/:id", ctrl.Auth.GetUser)
	}

	connections := authenticated.Group("/connections")
	{
		connections.POST("", ctrl.Connection.Request)
		connections.GET("", ctrl.Connection.List)
		connections.PATCH("/:id", ctrl.Connection.Respond)
		connections.DELETE("/:id", ctrl.Connection.Remove)
	}

	inquiries := authenticated.Group("/inquiries")
	{
		inquiries.POST("", ctrl.Inquiry.Send)
		inquiries.GET("/inbox", ctrl.Inquiry.Inbox)
		inquiries.GET("/sent", ctrl.Inquiry.Sent)
		inquiries.PATCH("/:id/read", ctrl.Inquiry.MarkRead)
		inquiries.POST("/:id/replied", ctrl.Inquiry.MarkReplied)
	}

	authenticated.GET("/notifications/ws", ctrl.Notify.Stream)

	// --- Student ---
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)
	authenticated.POST("/events/:id/register", studentOnly, ctrl.Student.RegisterForEvent)
	authenticated.POST("/opportunities/:id/apply", studentOnly, ctrl.Student.Apply)
	authenticated.POST("/payments/:id/complete", studentOnly, ctrl.Student.CompletePayment)
	authenticated.POST("/payments/:id/fail", studentOnly, ctrl.Student.FailPayment)

	student := authenticated.Group("/student", studentOnly)
	{
		student.GET("/registrations", ctrl.Student.ListRegistrations)
		student.DELETE("/registrations/:id", ctrl.Student.CancelRegistration)
		student.GET("/applications", ctrl.Student.ListApplications)
	}

	// --- College ---
	college := authenticated.Group("/college", authMiddleware.RoleRequired(models.RoleCollege))
	{
		college.GET("/profile", ctrl.College.GetProfile)
		college.PUT("/profile", ctrl.College.UpdateProfile)
		college.POST("/profile/logo", ctrl.College.UploadLogo)

		college.GET("/events", ctrl.College.ListEvents)
		college.POST("/events", ctrl.College.CreateEvent)
		college.GET("/events/:id", ctrl.College.GetEvent)
		college.PUT("/events/:id", ctrl.College.UpdateEvent)
		college.DELETE("/events/:id", ctrl.College.DeleteEvent)
		college.POST("/events/:id/status", ctrl.College.ChangeEventStatus)
		college.POST("/events/:id/banner", ctrl.College.UploadBanner)
		college.POST("/events/:id/sub-events", ctrl.College.AddSubEvent)
		college.DELETE("/events/:id/sub-events/:subId", ctrl.College.DeleteSubEvent)
		college.GET("/events/:id/registrations", ctrl.College.ListEventRegistrations)

		college.GET("/opportunities", ctrl.College.ListOpportunities)
		college.POST("/opportunities", ctrl.College.CreateOpportunity)
	}

	// --- Company ---
	company := authenticated.Group("/company", authMiddleware.RoleRequired(models.RoleCompany))
	{
		company.GET("/profile", ctrl.Company.GetProfile)
		company.PUT("/profile", ctrl.Company.UpdateProfile)
		company.POST("/profile/logo", ctrl.Company.UploadLogo)

		company.GET("/opportunities", ctrl.Company.ListOpportunities)
		company.POST("/opportunities", ctrl.Company.CreateOpportunity)
		company.PUT("/opportunities/:id", ctrl.Company.UpdateOpportunity)
		company.DELETE("/opportunities/:id", ctrl.Company.DeleteOpportunity)
		company.GET("/opportunities/:id/applications", ctrl.Company.ListApplications)
		company.PATCH("/applications/:id", ctrl.Company.UpdateApplicationStatus)
	}

	// --- Admin ---
	admin := authenticated.Group("/admin", authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", ctrl.Admin.ListUsers)
		admin.POST("/users", ctrl.Admin.CreateUser)
		admin.GET("/users/export", ctrl.Admin.ExportUsers)
		admin.POST("/users/bulk-status", ctrl.Admin.BulkSetUserStatus)
		admin.PATCH("/users/:id/status", ctrl.Admin.SetUserStatus)
		admin.PUT("/users/:id/role", ctrl.Admin.SetUserRole)
		admin.DELETE("/users/:id", ctrl.Admin.DeleteUser)

		admin.GET("/colleges", ctrl.Admin.ListColleges)
		admin.PATCH("/colleges/:id", ctrl.Admin.UpdateCollegeFlags)
		admin.GET("/companies", ctrl.Admin.ListCompanies)
		admin.PATCH("/companies/:id", ctrl.Admin.UpdateCompanyFlags)

		admin.GET("/events", ctrl.Admin.ListEvents)
		admin.POST("/events/bulk-status", ctrl.Admin.BulkSetEventStatus)
		admin.GET("/opportunities", ctrl.Admin.ListOpportunities)
		admin.POST("/opportunities", ctrl.Admin.CreateOpportunity)
		admin.POST("/opportunities/bulk-status", ctrl.Admin.BulkSetOpportunityActive)

		admin.POST("/payments/:id/refund", ctrl.Admin.RefundPayment)
		admin.GET("/stats", ctrl.Admin.Stats)
	}
}
