// Package catalog serves the seeded, read-only set of page templates.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

// ErrNotFound is returned when a template id does not resolve.
var ErrNotFound = errors.New("template not found")

// Catalog exposes templates in catalog order with thumbnails resolved for display.
type Catalog struct {
	repo repositories.TemplateRepository
	seed []models.Template
}

// New constructs a Catalog. A nil seed falls back to DefaultTemplates.
func New(repo repositories.TemplateRepository, seed []models.Template) *Catalog {
	if seed == nil {
		seed = DefaultTemplates()
	}
	return &Catalog{repo: repo, seed: seed}
}

// SeedIfEmpty inserts the seed set when the repository holds no templates and
// reports how many were inserted. It is safe to call on every start.
func (c *Catalog) SeedIfEmpty(ctx context.Context) (int, error) {
	ctx, span := logging.StartSpan(ctx, "catalog.seed")

	seeded, err := c.seedIfEmpty(ctx)
	span.EndErr(err)
	return seeded, err
}

func (c *Catalog) seedIfEmpty(ctx context.Context) (int, error) {
	logger := logging.FromContext(ctx)

	count, err := c.repo.Count(ctx)
	if err != nil {
		return 0, oops.With("operation", "count templates").Wrap(err)
	}
	if count > 0 {
		logger.Debug("catalog already seeded", slog.Int("templates", count))
		return 0, nil
	}

	if err := c.repo.Insert(ctx, c.seed); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Another process seeded between Count and Insert.
			logger.Info("catalog seeded concurrently")
			return 0, nil
		}
		return 0, oops.With("operation", "seed templates").Wrap(err)
	}

	logger.Info("catalog seeded", slog.Int("templates", len(c.seed)))
	return len(c.seed), nil
}

// List returns every template in catalog order.
func (c *Catalog) List(ctx context.Context) ([]models.Template, error) {
	templates, err := c.repo.List(ctx)
	if err != nil {
		return nil, oops.With("operation", "list templates").Wrap(err)
	}

	out := make([]models.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t.WithDisplayThumbnail())
	}
	return out, nil
}

// Get returns the template with id or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (models.Template, error) {
	t, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Template{}, ErrNotFound
		}
		return models.Template{}, oops.With("operation", "get template", "template_id", id).Wrap(err)
	}
	return t.WithDisplayThumbnail(), nil
}

// DefaultTemplates returns the built-in seed set.
func DefaultTemplates() []models.Template {
	return []models.Template{
		{
			ID:           "t1",
			Name:         "Landing Page",
			Description:  "Simple marketing landing",
			ThumbnailURL: "https://cdn.prod.website-files.com/65bb7884c67879aa0d84f24e/65c0eb721ea864f342f436f8_What-are-landing-pages-and-why-do-you-need-to-use-them.jpeg",
			Category:     "Marketing",
		},
		{
			ID:           "t2",
			Name:         "Admin Dashboard",
			Description:  "Data tables and charts",
			ThumbnailURL: "https://github.com/mahendran516/images/blob/main/Screenshot%202024-10-30%20124739.png?raw=true",
			Category:     "Admin",
		},
		{
			ID:           "t3",
			Name:         "Blog",
			Description:  "Blog with posts and tags",
			ThumbnailURL: "https://github.com/mahendran516/images/blob/main/Screenshot%202024-10-29%20114154.png?raw=true",
			Category:     "Content",
		},
		{
			ID:           "t4",
			Name:         "E-commerce",
			Description:  "Product catalog and cart",
			ThumbnailURL: "https://github.com/mahendran516/images/blob/main/Screenshot%202024-12-19%20162010.png?raw=true",
			Category:     "Ecommerce",
		},
		{
			ID:           "t5",
			Name:         "Portfolio",
			Description:  "Personal portfolio template",
			ThumbnailURL: "https://tint.creativemarket.com/lqU1IZwUw4HHPPwvET5xd6aCqNrJ8n4zYIqGhcuq8BY/width:1200/height:800/gravity:nowe/rt:fill-down/el:1/czM6Ly9maWxlcy5jcmVhdGl2ZW1hcmtldC5jb20vaW1hZ2VzL3NjcmVlbnNob3RzL3Byb2R1Y3RzLzU0MDUvNTQwNTkvNTQwNTk2NzgvdjJfZGVzaWducG9ydGZvbGlvLXRlbXBsYXRlLXR5cGVmb29sLXByb21vdGlvbmFsLW8uanBnIzE3NTQzOTI3MDc?1754392707",
			Category:     "Portfolio",
		},
	}
}
