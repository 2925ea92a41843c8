package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventlisting/internal/delivery/http/controllers"
	"eventlisting/internal/delivery/http/helpers"
	"eventlisting/internal/delivery/http/middleware"
	"eventlisting/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	rsvpController *controllers.RSVPController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Events
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("POST /events", requireAuth(eventController.Create))
	mux.HandleFunc("GET /events/{eventID}", eventController.Get)
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.Delete))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", requireAuth(rsvpController.Join))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", requireAuth(rsvpController.Leave))

	// Dashboards
	mux.HandleFunc("GET /events/user/my-events", requireAuth(eventController.MyEvents))
	mux.HandleFunc("GET /events/user/my-rsvps", requireAuth(eventController.MyRSVPs))

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteSuccessMessage(w, http.StatusOK, nil, "ok")
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
