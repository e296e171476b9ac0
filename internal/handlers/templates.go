package handlers

import (
	"errors"
	"net/http"

	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/logging"
)

// TemplateHandler serves the public catalog.
type TemplateHandler struct {
	Catalog TemplateCatalog
}

// List handles GET /api/templates.
func (h TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	templates, err := h.Catalog.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list templates failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(ctx, w, http.StatusOK, templates)
}

// Get handles GET /api/templates/{id}.
func (h TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	template, err := h.Catalog.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, err.Error())
			return
		}
		logging.FromContext(ctx).Error("get template failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(ctx, w, http.StatusOK, template)
}
