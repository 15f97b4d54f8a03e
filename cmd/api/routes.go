package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.Response(w, r, nil, "", http.StatusMethodNotAllowed)
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.CORS.TrustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(app.RateLimiter)

	router.Get("/healthcheck", app.healthcheck)

	router.Post("/registerAdmin", app.registerAdmin)
	router.Post("/register", app.registerUser)
	router.Post("/loginAdmin", app.loginAdmin)
	router.Post("/login", app.loginUser)
	router.Get("/token", app.refreshToken)
	router.Delete("/logoutAdmin", app.logoutAdmin)
	router.Delete("/logoutUser", app.logoutUser)

	router.Route("/Movies", func(r chi.Router) {
		r.Get("/", app.listMovies)
		r.Get("/{id}", app.getMovie)
		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication, app.requireAdmin)
			r.Post("/", app.createMovie)
			r.Patch("/{id}", app.updateMovie)
			r.Delete("/{id}", app.deleteMovie)
		})
	})

	router.Route("/reviews", func(r chi.Router) {
		r.Get("/", app.listReviews)
		r.Get("/{id}", app.getReview)
		r.Get("/movie/{movieId}", app.listMovieReviews)
		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)
			r.Post("/", app.createReview)
			r.Patch("/{id}", app.updateReview)
			r.Delete("/{id}", app.deleteReview)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication, app.requireAdmin)
		r.Get("/admins", app.listAdmins)
		r.Get("/admins/{id}", app.getAdmin)
		r.Put("/edit-admin/{id}", app.updateAdmin)
		r.Delete("/delete-admin/{id}", app.deleteAdmin)
	})

	// poster references are URL paths relative to the uploads root
	router.Handle("/uploads/*", http.FileServer(http.Dir(app.cfg.Uploads.Root)))
	return router
}
