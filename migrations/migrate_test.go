package migrations_test

import (
	"context"
	"testing"

	"github.com/cimillas/boxoffice/internal/testutil"
	"github.com/cimillas/boxoffice/migrations"
)

func TestApply_RecordsMigrations(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS schema_migrations`); err != nil {
		t.Fatalf("drop schema_migrations: %v", err)
	}

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(applied) < 3 {
		t.Fatalf("expected at least 3 migrations applied, got %v", applied)
	}

	again, err := migrations.Apply(ctx, pool)
	if err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no migrations on re-apply, got %v", again)
	}

	status, err := migrations.Status(ctx, pool)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status) != len(applied) {
		t.Fatalf("expected %d migrations in status, got %d", len(applied), len(status))
	}
	for _, m := range status {
		if !m.Applied {
			t.Fatalf("expected %s to be applied", m.Name)
		}
	}
}
