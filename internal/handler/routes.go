package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/handler/middleware"
	"github.com/gomesrodrigo528/app-form/pkg/metrics"
)

type AppConfig struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

// NewApp builds the fiber app with the global middleware chain.
func NewApp(cfg AppConfig, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
	})

	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.AllowOrigins))
	return app
}

type Handlers struct {
	Auth        *AuthHandler
	Setup       *SetupHandler
	Form        *FormHandler
	Submission  *SubmissionHandler
	Tenant      *TenantHandler
	User        *UserHandler
	Public      *PublicHandler
	Health      *HealthHandler
	ExposeStats bool
}

func SetupRoutes(app *fiber.App, h Handlers, authMiddleware fiber.Handler) {
	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	if h.ExposeStats {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	// Public form pages
	public := app.Group("/f")
	public.Get("/:slug/:formId", h.Public.GetForm)
	public.Post("/:slug/:formId", h.Public.Submit)

	api := app.Group("/api/v1")
	api.Post("/setup/superuser", h.Setup.CreateSuperuser)

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", authMiddleware, h.Auth.Logout)

	api.Get("/me", authMiddleware, h.Auth.Me)

	// Tenant scope (protected)
	forms := api.Group("/forms", authMiddleware)
	forms.Get("/", h.Form.ListForms)
	forms.Post("/", h.Form.CreateForm)
	forms.Get("/:id", h.Form.GetForm)
	forms.Put("/:id", h.Form.UpdateForm)
	forms.Delete("/:id", h.Form.DeleteForm)
	forms.Get("/:id/link", h.Form.Link)
	forms.Get("/:id/fields", h.Form.ListFields)
	forms.Post("/:id/fields", h.Form.CreateField)
	forms.Get("/:id/fields/:fieldId", h.Form.GetField)
	forms.Put("/:id/fields/:fieldId", h.Form.UpdateField)
	forms.Delete("/:id/fields/:fieldId", h.Form.DeleteField)

	api.Get("/submissions", authMiddleware, h.Submission.ListSubmissions)
	api.Get("/submissions/:id", authMiddleware, h.Submission.GetSubmission)
	api.Get("/leads", authMiddleware, h.Submission.ListLeads)
	api.Get("/stats", authMiddleware, h.Submission.Stats)

	api.Get("/settings", authMiddleware, h.Tenant.GetSettings)
	api.Put("/settings", authMiddleware, h.Tenant.UpdateSettings)

	users := api.Group("/users", authMiddleware)
	users.Get("/", h.User.ListUsers)
	users.Post("/", h.User.CreateUser)
	users.Get("/:id", h.User.GetUser)
	users.Put("/:id", h.User.UpdateUser)
	users.Delete("/:id", h.User.DeleteUser)

	// Platform administration (superuser only)
	admin := api.Group("/admin", authMiddleware, middleware.RequireSuperuser())
	tenants := admin.Group("/tenants")
	tenants.Get("/", h.Tenant.ListTenants)
	tenants.Post("/", h.Tenant.CreateTenant)
	tenants.Get("/:id", h.Tenant.GetTenant)
	tenants.Put("/:id", h.Tenant.UpdateTenant)
	tenants.Delete("/:id", h.Tenant.DeleteTenant)
	tenants.Get("/:id/users", h.Tenant.ListTenantUsers)
	tenants.Post("/:id/users", h.Tenant.AddTenantUser)
}
