package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/playsquare/authkit/integration/database/pg/migrations"
)

// Migrate applies pending schema migrations using goose. With
// cfg.MigrationsPath set, migrations are read from that directory on disk;
// otherwise the migrations embedded in this module are applied. goose does
// not speak pgx natively, so the pool is adapted through database/sql without
// giving up pool ownership.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	var (
		fsys fs.FS
		dir  = "."
	)
	if cfg.MigrationsPath != "" {
		info, err := os.Stat(cfg.MigrationsPath)
		if err != nil || !info.IsDir() {
			return ErrMigrationsDirNotFound
		}
		fsys = os.DirFS(cfg.MigrationsPath)
	} else {
		fsys = migrations.FS
	}

	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if log != nil {
		version, err := goose.GetDBVersionContext(ctx, db)
		if err == nil {
			log.InfoContext(ctx, "database migrations applied",
				slog.Int64("version", version))
		}
	}
	return nil
}
