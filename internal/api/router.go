package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/app"
	iauth "github.com/jbeaudin/maplewood/internal/auth"
	"github.com/jbeaudin/maplewood/internal/drafts"
	"github.com/jbeaudin/maplewood/internal/handlers"
	"github.com/jbeaudin/maplewood/internal/middleware"
	"github.com/jbeaudin/maplewood/internal/services"
)

// Services bundles the domain services the router mounts handlers for.
type Services struct {
	Lookup      *services.LookupService
	Submission  *services.SubmissionService
	Parties     *services.PartyService
	Guests      *services.GuestService
	Events      *services.EventService
	Invitations *services.InvitationService
	Reports     *services.ReportService
}

// NewRouter builds the Gin engine, wires middleware, and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs Services, draftStore drafts.Store, rateStore middleware.RateStore) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// Public endpoints
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler, err := handlers.NewAuthHandler(jwt, handlers.AuthConfig{
		SitePasswordHash:  cfg.Auth.SitePasswordHash,
		AdminUsername:     cfg.Auth.Admin.Username,
		AdminPasswordHash: cfg.Auth.Admin.PasswordHash,
	})
	if err != nil {
		return nil, err
	}

	limit := func(name string, settings app.LimitSettings) gin.HandlerFunc {
		return middleware.RateLimit(rateStore, name, settings.MaxRequests, settings.Window)
	}

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", limit("site_login", cfg.RateLimit.SiteLogin), authHandler.SiteLogin)
		auth.POST("/admin/login", limit("admin_login", cfg.RateLimit.AdminLogin), authHandler.AdminLogin)
	}

	rsvpHandler, err := handlers.NewRsvpHandler(db, svcs.Lookup, svcs.Submission, draftStore)
	if err != nil {
		return nil, err
	}

	// Guest-facing routes sit behind the shared site password.
	rsvp := r.Group("/api/rsvp")
	rsvp.Use(middleware.RequireScope(jwt, iauth.ScopeGuest))
	{
		rsvp.POST("/lookup", limit("lookup", cfg.RateLimit.Lookup), rsvpHandler.Lookup)
		rsvp.POST("/submit", limit("submit", cfg.RateLimit.Submit), rsvpHandler.Submit)
		rsvp.GET("/draft/:partyID", rsvpHandler.GetDraft)
		rsvp.PUT("/draft/:partyID", rsvpHandler.SaveDraft)
		rsvp.DELETE("/draft/:partyID", rsvpHandler.DeleteDraft)
	}

	partyHandler, err := handlers.NewPartyHandler(svcs.Parties, svcs.Guests, svcs.Invitations)
	if err != nil {
		return nil, err
	}
	guestHandler, err := handlers.NewGuestHandler(svcs.Guests)
	if err != nil {
		return nil, err
	}
	eventHandler, err := handlers.NewEventHandler(svcs.Events)
	if err != nil {
		return nil, err
	}
	reportHandler, err := handlers.NewReportHandler(svcs.Reports)
	if err != nil {
		return nil, err
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireScope(jwt, iauth.ScopeAdmin))
	{
		admin.GET("/parties", partyHandler.List)
		admin.GET("/parties/:id", partyHandler.Get)
		admin.POST("/parties", partyHandler.Create)
		admin.PATCH("/parties/:id", partyHandler.Update)
		admin.DELETE("/parties/:id", partyHandler.Delete)
		admin.PUT("/parties/:id/invitations", partyHandler.ReplaceInvitations)

		admin.POST("/guests", guestHandler.Create)
		admin.PATCH("/guests/:id", guestHandler.Update)
		admin.DELETE("/guests/:id", guestHandler.Delete)

		admin.GET("/events", eventHandler.List)
		admin.POST("/events", eventHandler.Create)
		admin.PATCH("/events/:id", eventHandler.Update)
		admin.DELETE("/events/:id", eventHandler.Delete)

		admin.GET("/rsvps", reportHandler.ListRsvps)
		admin.GET("/songs", reportHandler.ListSongRequests)
		admin.GET("/stats", reportHandler.Stats)
		admin.GET("/export/rsvps", reportHandler.ExportRsvps)
	}

	return r, nil
}
