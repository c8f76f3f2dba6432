package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/handlers"
	"github.com/kdblock/panel/internal/middleware"
	"github.com/kdblock/panel/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	notificationHandler *handlers.NotificationHandler,
	photoHandler *handlers.PhotoHandler,
	publicHandler *handlers.PublicHandler,
	contactHandler *handlers.ContactHandler,
	tokenManager *auth.TokenManager,
	adminFetcher auth.AdminFetcher,
) {
	loginLimit := middleware.DefaultLoginRateLimit()
	contactLimit := middleware.DefaultContactRateLimit()

	// Public site - no authentication
	router.Get("/public/notifications", publicHandler.Notifications)
	router.Get("/public/gallery", publicHandler.Gallery)
	router.Get("/public/slideshow", publicHandler.Slideshow)
	router.With(middleware.RateLimitByIP(contactLimit)).Post("/public/contact", contactHandler.Submit)

	// Login flow - rate limited by IP on top of the per-account governor
	router.With(middleware.RateLimitByIP(loginLimit)).Get("/auth/login", authHandler.LoginState)
	router.With(middleware.RateLimitByIP(loginLimit)).Post("/auth/login", authHandler.Login)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, adminFetcher))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		// Account management - main admin only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCapability(func(c models.Capabilities) bool { return c.ManageAdmins }))
			r.Get("/admins", adminHandler.List)
			r.Post("/admins", adminHandler.Create)
			r.Patch("/admins/{id}", adminHandler.Update)
			r.Delete("/admins/{id}", adminHandler.Delete)
		})

		// Password changes are gated inside the service: self-service for
		// sub-admins, any account for the main admin.
		r.Put("/admins/{id}/password", adminHandler.ChangePassword)

		// Notifications - notification capability
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCapability(func(c models.Capabilities) bool { return c.ManageNotifications }))
			r.Get("/notifications", notificationHandler.List)
			r.Get("/notifications/{id}", notificationHandler.Get)
			r.Post("/notifications", notificationHandler.Create)
			r.Patch("/notifications/{id}", notificationHandler.Update)
			r.Delete("/notifications/{id}", notificationHandler.Delete)
		})

		// Photos - photo capability
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCapability(func(c models.Capabilities) bool { return c.ManagePhotos }))
			r.Get("/gallery", photoHandler.ListGallery)
			r.Post("/gallery", photoHandler.UploadGalleryImage)
			r.Delete("/gallery/{id}", photoHandler.DeleteGalleryImage)
			r.Get("/slideshow", photoHandler.ListSlideshow)
			r.Post("/slideshow", photoHandler.UploadSlide)
			r.Patch("/slideshow/{id}", photoHandler.UpdateSlide)
			r.Delete("/slideshow/{id}", photoHandler.DeleteSlide)
		})
	})
}
