// Package router registers the HTTP routes of the venue service.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RegisterRoutes registers the unauthenticated routes.  Only the health
// check lives outside /v1.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// AdminOptions carries the middleware shared by the admin group.
type AdminOptions struct {
	JWTSecret   string
	Cache       echo.MiddlewareFunc
	Invalidator *middleware.CacheInvalidator
}

// RegisterAdmin mounts the admin API under /v1/admin.  Every route needs a
// valid token with the ADMIN role.  GET responses go through the response
// cache and any successful write purges it.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, opts AdminOptions) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(opts.JWTSecret))
	g.Use(middleware.RequireRole(middleware.RoleAdmin))
	g.Use(middleware.InvalidateOnWrite(opts.Invalidator))
	if opts.Cache != nil {
		g.Use(opts.Cache)
	}

	g.GET("/events", h.ListEvents)
	g.POST("/events", h.CreateEvent)
	g.GET("/events/:id", h.GetEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.PUT("/events/:id/bar/:bar_id", h.AttachBar)

	g.GET("/bars", h.ListBars)
	g.POST("/bars", h.CreateBar)
	g.GET("/bars/:id", h.GetBar)
	g.PUT("/bars/:id", h.UpdateBar)
	g.DELETE("/bars/:id", h.DeleteBar)
	g.POST("/bars/:id/totals", h.RecalculateBarTotals)
	g.GET("/bars/:id/items/:kind", h.ListBarItems)
	g.POST("/bars/:id/items/:kind", h.CreateBarItem)
	g.PUT("/bars/:id/items/:kind/:item_id", h.UpdateBarItem)
	g.DELETE("/bars/:id/items/:kind/:item_id", h.DeleteBarItem)

	g.GET("/arrangements", h.ListArrangements)
	g.POST("/arrangements", h.CreateArrangement)
	g.GET("/arrangements/:id", h.GetArrangement)
	g.PUT("/arrangements/:id", h.UpdateArrangement)
	g.DELETE("/arrangements/:id", h.DeleteArrangement)

	// options is registered before :id so echo's static segment wins.
	g.GET("/assignments", h.ListAssignments)
	g.POST("/assignments", h.AssignEmployee)
	g.GET("/assignments/options", h.AssignmentOptions)
	g.PUT("/assignments/:id", h.UpdateAssignment)
	g.DELETE("/assignments/:id", h.DeleteAssignment)
}
