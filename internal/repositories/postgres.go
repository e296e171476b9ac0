package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/templatehub/backend/internal/db"
	"github.com/templatehub/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO users (id, username, password, created_at)
        VALUES ($1, $2, $3, $4)
    `, user.ID, user.Username, user.Password, user.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return oops.With("operation", "insert user").With("username", user.Username).Wrap(err)
	}

	return nil
}

// FindByUsername fetches a user by exact username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, username, password, created_at
        FROM users
        WHERE username = $1
    `, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, err
		}
		return models.User{}, oops.With("operation", "select user by username").Wrap(err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, username, password, created_at
        FROM users
        WHERE id = $1
    `, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, err
		}
		return models.User{}, oops.With("operation", "select user by id").With("user_id", id).Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// PostgresTemplateRepository provides PostgreSQL-backed persistence for the catalog.
type PostgresTemplateRepository struct {
	pool db.Pool
}

// NewPostgresTemplateRepository constructs a template repository backed by PostgreSQL.
func NewPostgresTemplateRepository(pool db.Pool) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{pool: pool}
}

// Count returns the number of templates in the catalog.
func (r *PostgresTemplateRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return 0, oops.With("operation", "count templates").Wrap(err)
	}
	return count, nil
}

// Insert stores the templates in a single transaction, appending them after any
// existing rows so List keeps insertion order.
func (r *PostgresTemplateRepository) Insert(ctx context.Context, templates []models.Template) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.With("operation", "begin template insert").Wrap(err)
	}

	for _, t := range templates {
		_, err := tx.Exec(ctx, `
            INSERT INTO templates (id, name, description, thumbnail_url, category, position)
            VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position), 0) + 1 FROM templates))
        `, t.ID, t.Name, t.Description, t.ThumbnailURL, t.Category)
		if err != nil {
			_ = tx.Rollback(ctx)
			if pgErrorCode(err) == pgerrcode.UniqueViolation {
				return ErrConflict
			}
			return oops.With("operation", "insert template").With("template_id", t.ID).Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.With("operation", "commit template insert").Wrap(err)
	}
	return nil
}

// List returns every template ordered by insertion.
func (r *PostgresTemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, description, thumbnail_url, category
        FROM templates
        ORDER BY position
    `)
	if err != nil {
		return nil, oops.With("operation", "query templates").Wrap(err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.ThumbnailURL, &t.Category); err != nil {
			return nil, oops.With("operation", "scan template").Wrap(err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate templates").Wrap(err)
	}

	return templates, nil
}

// Get fetches a single template by id.
func (r *PostgresTemplateRepository) Get(ctx context.Context, id string) (models.Template, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, name, description, thumbnail_url, category
        FROM templates
        WHERE id = $1
    `, id)

	var t models.Template
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ThumbnailURL, &t.Category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, ErrNotFound
		}
		return models.Template{}, oops.With("operation", "select template").With("template_id", id).Wrap(err)
	}
	return t, nil
}

// PostgresFavoriteRepository provides PostgreSQL-backed persistence for favorites.
type PostgresFavoriteRepository struct {
	pool db.Pool
}

// NewPostgresFavoriteRepository constructs a favorite repository backed by PostgreSQL.
func NewPostgresFavoriteRepository(pool db.Pool) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{pool: pool}
}

// Add inserts a favorite. A repeated pair yields ErrConflict and a reference to a
// missing user or template yields ErrNotFound.
func (r *PostgresFavoriteRepository) Add(ctx context.Context, favorite models.Favorite) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO favorites (user_id, template_id, created_at)
        VALUES ($1, $2, $3)
    `, favorite.UserID, favorite.TemplateID, favorite.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgerrcode.UniqueViolation:
			return ErrConflict
		case pgerrcode.ForeignKeyViolation:
			return ErrNotFound
		}
		return oops.With("operation", "insert favorite").
			With("user_id", favorite.UserID).
			With("template_id", favorite.TemplateID).
			Wrap(err)
	}
	return nil
}

// ListForUser returns the user's favorites oldest first.
func (r *PostgresFavoriteRepository) ListForUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT user_id, template_id, created_at
        FROM favorites
        WHERE user_id = $1
        ORDER BY created_at, template_id
    `, userID)
	if err != nil {
		return nil, oops.With("operation", "query favorites").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.UserID, &f.TemplateID, &f.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan favorite").Wrap(err)
		}
		f.CreatedAt = f.CreatedAt.UTC()
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate favorites").Wrap(err)
	}

	return favorites, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ TemplateRepository = (*PostgresTemplateRepository)(nil)
var _ FavoriteRepository = (*PostgresFavoriteRepository)(nil)
