package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/tbuchert/accounting-api/internal/handlers"
	authmw "github.com/tbuchert/accounting-api/internal/middleware/auth"
	"github.com/tbuchert/accounting-api/internal/models"
	authsvc "github.com/tbuchert/accounting-api/internal/service/auth"
)

type Deps struct {
	Auth *authsvc.Service

	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	ClientHandler      *handlers.ClientHandler
	ItemHandler        *handlers.ItemHandler
	InvoiceHandler     *handlers.InvoiceHandler
	PaymentHandler     *handlers.PaymentHandler
	PreferencesHandler *handlers.PreferencesHandler
	SearchHandler      *handlers.SearchHandler
	StatusHandler      *handlers.StatusHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/status/health", d.StatusHandler.Health)
	e.GET("/status/db", d.StatusHandler.DBHealth)
	e.GET("/status/meta", d.StatusHandler.Meta)

	v1 := e.Group("/api/v1")

	// unauthenticated auth surface
	v1.POST("/auth/token", d.AuthHandler.Token)
	v1.POST("/auth/refresh", d.AuthHandler.Refresh)
	v1.POST("/auth/logout", d.AuthHandler.Logout)
	v1.POST("/auth/forgot-password", d.AuthHandler.ForgotPassword)
	v1.POST("/auth/reset-password", d.AuthHandler.ResetPassword)

	authed := v1.Group("", authmw.Middleware(d.Auth))
	authed.GET("/auth/me", d.AuthHandler.Me)
	authed.POST("/auth/change-password", d.AuthHandler.ChangePassword)
	authed.GET("/users/me", d.UserHandler.Profile)
	authed.PATCH("/users/me", d.UserHandler.UpdateProfile)

	staff := authed.Group("", authmw.RequireRoles(models.RoleAccountant, models.RoleAdmin))

	staff.GET("/clients", d.ClientHandler.List)
	staff.POST("/clients", d.ClientHandler.Create)
	staff.GET("/clients/:id", d.ClientHandler.Get)
	staff.PATCH("/clients/:id", d.ClientHandler.Patch)
	staff.POST("/clients/:id/validate-vat", d.ClientHandler.ValidateVAT)
	staff.GET("/clients/:id/contacts", d.ClientHandler.ListContacts)
	staff.POST("/clients/:id/contacts", d.ClientHandler.AddContact)
	staff.PATCH("/clients/contacts/:contact_id", d.ClientHandler.UpdateContact)
	staff.DELETE("/clients/contacts/:contact_id", d.ClientHandler.DeleteContact)
	staff.GET("/clients/:id/attachments", d.ClientHandler.ListAttachments)
	staff.POST("/clients/:id/attachments", d.ClientHandler.AddAttachment)
	staff.GET("/clients/attachments/:attachment_id", d.ClientHandler.GetAttachment)
	staff.DELETE("/clients/attachments/:attachment_id", d.ClientHandler.DeleteAttachment)

	staff.GET("/items", d.ItemHandler.List)
	staff.POST("/items", d.ItemHandler.Create)
	staff.GET("/items/:id", d.ItemHandler.Get)
	staff.PATCH("/items/:id", d.ItemHandler.Patch)
	staff.DELETE("/items/:id", d.ItemHandler.Delete)

	staff.GET("/invoices", d.InvoiceHandler.List)
	staff.POST("/invoices", d.InvoiceHandler.Create)
	staff.GET("/invoices/:id", d.InvoiceHandler.Get)
	staff.PATCH("/invoices/:id", d.InvoiceHandler.Patch)
	staff.DELETE("/invoices/:id", d.InvoiceHandler.Delete)
	staff.GET("/invoices/:id/payments", d.PaymentHandler.ListForInvoice)
	staff.POST("/invoices/:id/payments", d.PaymentHandler.Record)
	staff.DELETE("/payments/:payment_id", d.PaymentHandler.Delete)

	staff.GET("/search", d.SearchHandler.Search)

	admin := authed.Group("/admin", authmw.RequireRoles(models.RoleAdmin))
	admin.GET("/users", d.UserHandler.List)
	admin.POST("/users", d.UserHandler.Create)
	admin.GET("/users/:id", d.UserHandler.Get)
	admin.PATCH("/users/:id", d.UserHandler.Patch)
	admin.DELETE("/users/:id", d.UserHandler.Delete)
	admin.GET("/preferences", d.PreferencesHandler.Get)
	admin.PUT("/preferences", d.PreferencesHandler.Put)
}
