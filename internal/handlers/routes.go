package handlers

import (
	"net/http"

	"github.com/templatehub/backend/internal/metrics"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Database: deps.Database}
	authn := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Metrics: deps.Metrics}
	templates := TemplateHandler{Catalog: deps.Catalog}
	favorites := FavoriteHandler{Favorites: deps.Favorites, Metrics: deps.Metrics}

	requireAuth := RequireAuth(deps.Sessions, deps.Metrics)

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	mux.HandleFunc("POST /register", authn.Register)
	mux.HandleFunc("POST /login", authn.Login)
	mux.Handle("POST /logout", requireAuth(http.HandlerFunc(authn.Logout)))

	mux.HandleFunc("GET /api/templates", templates.List)
	mux.HandleFunc("GET /api/templates/{id}", templates.Get)

	mux.Handle("POST /api/favorites/{templateId}", requireAuth(http.HandlerFunc(favorites.Add)))
	mux.Handle("GET /api/favorites", requireAuth(http.HandlerFunc(favorites.List)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts  AccountService
	Sessions  SessionRegistry
	Catalog   TemplateCatalog
	Favorites FavoriteLedger
	Metrics   *metrics.Metrics
	Database  Pinger
}
