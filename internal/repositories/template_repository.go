package repositories

import (
	"context"

	"github.com/templatehub/backend/internal/models"
)

// TemplateRepository defines data access for catalog templates. List returns
// templates in insertion order.
type TemplateRepository interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, templates []models.Template) error
	List(ctx context.Context) ([]models.Template, error)
	Get(ctx context.Context, id string) (models.Template, error)
}
