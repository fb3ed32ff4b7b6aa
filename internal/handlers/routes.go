package handlers

import (
	"net/http"

	"github.com/yiba-it/postir/internal/gen"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Profiles: deps.Profiles, Sessions: deps.Sessions}
	generate := GenerateHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Generations: deps.Generations, Posts: deps.Posts}
	image := ImageHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Generations: deps.Generations, Images: deps.Images, Storage: deps.Storage}
	video := VideoHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Generations: deps.Generations, Scripts: deps.Scripts, Clips: deps.Clips}
	usage := UsageHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Generations: deps.Generations, Payments: deps.Payments}
	pay := PaymentHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Payments: deps.Payments, Checkout: deps.Checkout}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/auth/login", auth.Login)
	mux.HandleFunc("/api/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/auth/me", auth.Me)
	mux.HandleFunc("/api/auth/logout", auth.Logout)
	mux.HandleFunc("/api/generate", generate.Handle)
	mux.HandleFunc("/api/image", image.Handle)
	mux.HandleFunc("/api/video", video.Handle)
	mux.HandleFunc("/api/usage", usage.Handle)
	mux.HandleFunc("/api/payment", pay.Handle)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users       UserStore
	Profiles    ProfileStore
	Sessions    SessionManager
	Generations GenerationStore
	Payments    PaymentStore
	Posts       PostGenerator
	Scripts     ScriptGenerator
	Images      ImageGenerator
	Clips       gen.StockProvider
	Storage     ImageStorage
	Checkout    CheckoutProvider
}
