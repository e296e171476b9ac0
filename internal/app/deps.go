package app

import (
	"context"
	"log/slog"

	"github.com/templatehub/backend/internal/accounts"
	"github.com/templatehub/backend/internal/auth"
	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/config"
	"github.com/templatehub/backend/internal/db"
	"github.com/templatehub/backend/internal/favorites"
	"github.com/templatehub/backend/internal/handlers"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/metrics"
	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
	"github.com/templatehub/backend/internal/storage"
)

// stores groups the repositories backing one process.
type stores struct {
	users     repositories.UserRepository
	templates repositories.TemplateRepository
	favorites repositories.FavoriteRepository
}

func memoryStores() stores {
	return stores{
		users:     repositories.NewMemoryUserRepository(),
		templates: repositories.NewMemoryTemplateRepository(),
		favorites: repositories.NewMemoryFavoriteRepository(),
	}
}

func postgresStores(pool db.Pool, cfg config.Config) stores {
	var templates repositories.TemplateRepository = repositories.NewPostgresTemplateRepository(pool)
	if cfg.CatalogCacheTTL > 0 {
		templates = catalog.NewCachingRepository(templates, cfg.CatalogCacheTTL)
	}
	return stores{
		users:     repositories.NewPostgresUserRepository(pool),
		templates: templates,
		favorites: repositories.NewPostgresFavoriteRepository(pool),
	}
}

// services is the fully wired object graph served over HTTP.
type services struct {
	accounts  *accounts.Service
	registry  *auth.Registry
	catalog   *catalog.Catalog
	favorites *favorites.Ledger
	metrics   *metrics.Metrics
}

// buildServices wires the domain services over s. The catalog is seeded from
// cfg.CatalogSeed when empty.
func buildServices(ctx context.Context, s stores, cfg config.Config) (services, error) {
	seed, err := loadSeed(ctx, cfg)
	if err != nil {
		return services{}, err
	}

	accountService := accounts.NewService(s.users)
	registry := auth.NewRegistry(cfg.SessionTTL, auth.NewInMemorySessionStore(), accountService)
	templates := catalog.New(s.templates, seed)
	if _, err := templates.SeedIfEmpty(ctx); err != nil {
		return services{}, err
	}

	m := metrics.New()
	m.TrackActiveSessions(func() int {
		n, err := registry.Active(context.Background())
		if err != nil {
			return 0
		}
		return n
	})

	return services{
		accounts:  accountService,
		registry:  registry,
		catalog:   templates,
		favorites: favorites.NewLedger(s.favorites, templates),
		metrics:   m,
	}, nil
}

func loadSeed(ctx context.Context, cfg config.Config) ([]models.Template, error) {
	var objects catalog.ObjectFetcher
	if storage.IsLocation(cfg.CatalogSeed) {
		reader, err := storage.NewS3Reader(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		objects = reader
	}

	seed, err := catalog.LoadSeed(ctx, cfg.CatalogSeed, objects)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("catalog seed loaded", slog.String("source", cfg.CatalogSeed), slog.Int("templates", len(seed)))
	return seed, nil
}

func (s services) handlerDependencies(database handlers.Pinger) handlers.Dependencies {
	return handlers.Dependencies{
		Accounts:  s.accounts,
		Sessions:  s.registry,
		Catalog:   s.catalog,
		Favorites: s.favorites,
		Metrics:   s.metrics,
		Database:  database,
	}
}
