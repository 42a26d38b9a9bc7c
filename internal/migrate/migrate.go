// Package migrate brings the schema up to date at server start. The SQL
// files ship inside the binary, so a deploy never depends on a migrations
// directory being present on disk.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pressroom-io/pressroom/migrations"
)

// Up applies every pending migration against the given DSN. It opens its
// own short-lived database/sql connection: goose needs *sql.DB, and the
// pgxpool used for request traffic is created after the schema is settled.
// Versioning is goose's default table (goose_db_version), so reruns are
// no-ops.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
