package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var migrationFiles embed.FS

const advisoryLockID int64 = 772041001

// Migration is one embedded SQL file and whether it has been applied.
type Migration struct {
	Name    string
	Applied bool
}

// Apply runs pending embedded migrations in filename order and returns the
// names it applied. Each file runs in its own transaction; concurrent callers
// serialize on an advisory lock.
func Apply(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := fileNames()
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockID); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockID)
	}()

	if err := ensureTable(ctx, conn.Conn()); err != nil {
		return nil, err
	}
	done, err := appliedSet(ctx, conn.Conn())
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		if done[name] {
			continue
		}
		sqlBytes, err := migrationFiles.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}
		sql := strings.TrimSpace(string(sqlBytes))

		err = pgx.BeginFunc(ctx, conn.Conn(), func(tx pgx.Tx) error {
			if sql != "" {
				if _, err := tx.Exec(ctx, sql); err != nil {
					return fmt.Errorf("exec migration %s: %w", name, err)
				}
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// Status lists every embedded migration with its applied flag.
func Status(ctx context.Context, pool *pgxpool.Pool) ([]Migration, error) {
	names, err := fileNames()
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if err := ensureTable(ctx, conn.Conn()); err != nil {
		return nil, err
	}
	done, err := appliedSet(ctx, conn.Conn())
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		out = append(out, Migration{Name: name, Applied: done[name]})
	}
	return out, nil
}

func fileNames() ([]string, error) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func ensureTable(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func appliedSet(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}
	done := make(map[string]bool, len(names))
	for _, n := range names {
		done[n] = true
	}
	return done, nil
}
