package app

import (
	"context"

	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/config"
)

func seedCatalog(ctx context.Context, s stores, cfg config.Config) (int, error) {
	seed, err := loadSeed(ctx, cfg)
	if err != nil {
		return 0, err
	}
	return catalog.New(s.templates, seed).SeedIfEmpty(ctx)
}
