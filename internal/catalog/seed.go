package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/storage"
)

// BuiltinSeed selects DefaultTemplates as the seed source.
const BuiltinSeed = "builtin"

// ErrInvalidSeed is returned for seed documents that cannot populate a catalog.
var ErrInvalidSeed = errors.New("invalid catalog seed")

// ObjectFetcher reads remote seed documents.
type ObjectFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// LoadSeed resolves source into a validated seed set. An empty source or
// "builtin" selects DefaultTemplates; s3://bucket/key is read through objects;
// anything else is a local JSON file, optionally prefixed with file://.
func LoadSeed(ctx context.Context, source string, objects ObjectFetcher) ([]models.Template, error) {
	source = strings.TrimSpace(source)

	var (
		data []byte
		err  error
	)
	switch {
	case source == "" || source == BuiltinSeed:
		return DefaultTemplates(), nil
	case storage.IsLocation(source):
		if objects == nil {
			return nil, fmt.Errorf("catalog seed %s: object storage is not configured", source)
		}
		data, err = objects.Fetch(ctx, source)
	default:
		data, err = os.ReadFile(strings.TrimPrefix(source, "file://"))
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog seed %s: %w", source, err)
	}

	return ParseSeed(data)
}

// ParseSeed decodes a JSON array of templates and checks that every entry has
// an id and a name and that ids are unique.
func ParseSeed(data []byte) ([]models.Template, error) {
	var templates []models.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: no templates", ErrInvalidSeed)
	}

	var problems []error
	seen := make(map[string]struct{}, len(templates))
	for i := range templates {
		t := &templates[i]
		t.ID = strings.TrimSpace(t.ID)
		t.Name = strings.TrimSpace(t.Name)

		switch {
		case t.ID == "":
			problems = append(problems, fmt.Errorf("entry %d: missing id", i))
		case t.Name == "":
			problems = append(problems, fmt.Errorf("entry %d (%s): missing name", i, t.ID))
		}
		if t.ID == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			problems = append(problems, fmt.Errorf("entry %d: duplicate id %s", i, t.ID))
		}
		seen[t.ID] = struct{}{}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, errors.Join(problems...))
	}
	return templates, nil
}
