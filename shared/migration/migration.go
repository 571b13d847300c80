package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const lockTimeout = 30 * time.Second

// Runner применяет миграции схемы, вшитые в бинарь через embed.FS.
type Runner struct {
	migrationsFS fs.FS
	path         string
	pool         *pgxpool.Pool
}

// NewRunner создает Runner поверх существующего пула подключений.
// path указывает каталог с *.sql файлами внутри migrationsFS.
func NewRunner(migrationsFS fs.FS, path string, pool *pgxpool.Pool) *Runner {
	return &Runner{
		migrationsFS: migrationsFS,
		path:         path,
		pool:         pool,
	}
}

// Apply накатывает все недостающие миграции. Отсутствие изменений не ошибка.
func (r *Runner) Apply(ctx context.Context) error {
	m, err := r.newMigrate(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Msg("database migrations applied successfully")
	return nil
}

// Rollback откатывает все миграции.
func (r *Runner) Rollback(ctx context.Context) error {
	m, err := r.newMigrate(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	log.Info().Msg("database migrations rolled back successfully")
	return nil
}

// Version возвращает текущую версию схемы и флаг dirty.
// Чистой новой базе соответствует версия 0.
func (r *Runner) Version(ctx context.Context) (uint, bool, error) {
	m, err := r.newMigrate(ctx)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force выставляет версию схемы без выполнения миграций. Нужен для ручного
// восстановления после dirty-состояния.
func (r *Runner) Force(ctx context.Context, version uint) error {
	m, err := r.newMigrate(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Force(int(version)); err != nil {
		return fmt.Errorf("failed to force migration version: %w", err)
	}

	log.Info().Uint("version", version).Msg("database migration version forced")
	return nil
}

func (r *Runner) newMigrate(ctx context.Context) (*migrate.Migrate, error) {
	if err := r.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	// golang-migrate работает через database/sql, заворачиваем пул.
	db := stdlib.OpenDBFromPool(r.pool)

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(r.migrationsFS, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.LockTimeout = lockTimeout

	return m, nil
}
