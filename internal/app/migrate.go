package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/templatehub/backend/internal/db"
)

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	pgerrcode.SerializationFailure: {},
	pgerrcode.DeadlockDetected:     {},
	pgerrcode.LockNotAvailable:     {},
}

// migrator applies embedded SQL files and records them in schema_migrations.
type migrator struct {
	pool    db.Pool
	files   fs.FS
	dir     string
	out     io.Writer
	backoff func() retry.Backoff
}

func newMigrator(pool db.Pool, files fs.FS, dir string, out io.Writer) *migrator {
	return &migrator{
		pool:  pool,
		files: files,
		dir:   dir,
		out:   out,
		backoff: func() retry.Backoff {
			b := retry.NewExponential(migrationBaseBackoff)
			b = retry.WithCappedDuration(migrationMaxBackoff, b)
			return retry.WithMaxRetries(migrationMaxRetries-1, b)
		},
	}
}

func (m *migrator) available() ([]string, error) {
	entries, err := fs.ReadDir(m.files, m.dir)
	if err != nil {
		return nil, oops.With("operation", "read migrations directory").Wrap(err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (m *migrator) applied(ctx context.Context) (map[string]struct{}, error) {
	if _, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
                version TEXT PRIMARY KEY,
                applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
		return nil, oops.With("operation", "ensure schema_migrations table").Wrap(err)
	}

	rows, err := m.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, oops.With("operation", "fetch applied migrations").Wrap(err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, oops.With("operation", "scan applied migration").Wrap(err)
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate applied migrations").Wrap(err)
	}
	return applied, nil
}

// Up applies every migration not yet recorded and reports how many ran.
func (m *migrator) Up(ctx context.Context) (int, error) {
	names, err := m.available()
	if err != nil {
		return 0, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if _, ok := applied[name]; ok {
			continue
		}

		contents, err := fs.ReadFile(m.files, path.Join(m.dir, name))
		if err != nil {
			return count, oops.With("operation", "read migration", "migration", name).Wrap(err)
		}
		if err := m.applyWithRetry(ctx, name, string(contents)); err != nil {
			return count, err
		}

		fmt.Fprintf(m.out, "applied migration %s\n", name)
		count++
	}

	if count == 0 {
		fmt.Fprintln(m.out, "no migrations to apply")
	}
	return count, nil
}

// Status prints every known migration with a marker for applied ones.
func (m *migrator) Status(ctx context.Context) error {
	names, err := m.available()
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if _, ok := applied[name]; ok {
			fmt.Fprintf(m.out, "[x] %s\n", name)
		} else {
			fmt.Fprintf(m.out, "[ ] %s\n", name)
		}
	}
	return nil
}

func (m *migrator) applyWithRetry(ctx context.Context, name, contents string) error {
	attempt := 0
	return retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		attempt++
		err := m.apply(ctx, name, contents)
		if err != nil && shouldRetryMigration(err) {
			fmt.Fprintf(m.out, "transient error applying migration %s (attempt %d/%d): %v\n", name, attempt, migrationMaxRetries, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (m *migrator) apply(ctx context.Context, name, contents string) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return oops.With("operation", "begin migration transaction", "migration", name).Wrap(err)
	}

	if _, err := tx.Exec(ctx, contents); err != nil {
		_ = tx.Rollback(ctx)
		return oops.With("operation", "apply migration", "migration", name).Wrap(err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		_ = tx.Rollback(ctx)
		return oops.With("operation", "record migration", "migration", name).Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return oops.With("operation", "commit migration", "migration", name).Wrap(err)
	}
	return nil
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryablePgErrorCodes[pgErr.Code]; ok {
			return true
		}
	}

	return errors.Is(err, pgx.ErrTxClosed)
}
