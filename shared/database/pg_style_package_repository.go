package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"headshot-server/shared/interfaces"
	"headshot-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.StylePackageRepository = (*pgStylePackageRepository)(nil)

const (
	createStylePackageQuery = `
        INSERT INTO style_packages
            (id, slug, name, status, default_settings, step_keys, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	getStylePackageByIDQuery = `
        SELECT id, slug, name, status, default_settings, step_keys, created_at, updated_at
        FROM style_packages
        WHERE id = $1
    `
	getStylePackageBySlugQuery = `
        SELECT id, slug, name, status, default_settings, step_keys, created_at, updated_at
        FROM style_packages
        WHERE slug = $1
    `
	listStylePackagesByStatusesQuery = `
        SELECT id, slug, name, status, default_settings, step_keys, created_at, updated_at
        FROM style_packages
        WHERE status = ANY($1)
        ORDER BY name, id
    `
	updateStylePackageQuery = `
        UPDATE style_packages SET
            slug = $1, name = $2, status = $3, default_settings = $4, step_keys = $5, updated_at = $6
        WHERE id = $7
    `
	archiveStylePackageQuery = `
        UPDATE style_packages SET
            status = $1, updated_at = $2
        WHERE id = $3 AND status <> $1
    `
)

type pgStylePackageRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgStylePackageRepository создает репозиторий пакетов стилей поверх PostgreSQL.
func NewPgStylePackageRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StylePackageRepository {
	return &pgStylePackageRepository{
		db:     db,
		logger: logger.Named("PgStylePackageRepo"),
	}
}

// Create сохраняет новый пакет стилей. Настройки и список шагов уходят в
// jsonb-колонки как есть.
func (r *pgStylePackageRepository) Create(ctx context.Context, pkg *models.StylePackage) error {
	now := time.Now().UTC()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now
	}
	pkg.UpdatedAt = now

	logFields := []zap.Field{zap.String("packageID", pkg.ID.String()), zap.String("slug", pkg.Slug)}
	r.logger.Debug("Creating style package", logFields...)

	_, err := r.db.Exec(ctx, createStylePackageQuery,
		pkg.ID,
		pkg.Slug,
		pkg.Name,
		pkg.Status,
		pkg.DefaultSettings,
		pkg.StepKeys,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create style package", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания пакета стилей %s: %w", pkg.Slug, err)
	}
	r.logger.Info("Style package created successfully", logFields...)
	return nil
}

// GetByID возвращает пакет стилей по идентификатору.
func (r *pgStylePackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StylePackage, error) {
	log := r.logger.With(zap.String("packageID", id.String()))

	var pkg models.StylePackage
	err := pgxscan.Get(ctx, r.db, &pkg, getStylePackageByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Style package not found by ID")
			return nil, models.ErrPackageNotFound
		}
		log.Error("Error getting style package by ID", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения пакета стилей %s: %w", id, err)
	}
	return &pkg, nil
}

// GetBySlug возвращает пакет стилей по slug.
func (r *pgStylePackageRepository) GetBySlug(ctx context.Context, slug string) (*models.StylePackage, error) {
	log := r.logger.With(zap.String("slug", slug))

	var pkg models.StylePackage
	err := pgxscan.Get(ctx, r.db, &pkg, getStylePackageBySlugQuery, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Style package not found by slug")
			return nil, models.ErrPackageNotFound
		}
		log.Error("Error getting style package by slug", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения пакета стилей по slug %s: %w", slug, err)
	}
	return &pkg, nil
}

// ListByStatuses возвращает пакеты в любом из перечисленных статусов.
// Пустой список статусов дает пустой результат, не ошибку.
func (r *pgStylePackageRepository) ListByStatuses(ctx context.Context, statuses []models.PackageStatus) ([]*models.StylePackage, error) {
	if len(statuses) == 0 {
		return []*models.StylePackage{}, nil
	}

	log := r.logger.With(zap.Int("statusCount", len(statuses)))

	// Используем pq.Array для передачи среза строк в ANY($1)
	statusStrings := make([]string, len(statuses))
	for i, status := range statuses {
		statusStrings[i] = string(status)
	}

	var packages []*models.StylePackage
	err := pgxscan.Select(ctx, r.db, &packages, listStylePackagesByStatusesQuery, pq.Array(statusStrings))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*models.StylePackage{}, nil
		}
		log.Error("Error listing style packages by statuses", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения списка пакетов стилей: %w", err)
	}
	if packages == nil {
		packages = []*models.StylePackage{}
	}
	log.Debug("Style packages listed", zap.Int("count", len(packages)))
	return packages, nil
}

// Update сохраняет изменённый пакет стилей целиком.
func (r *pgStylePackageRepository) Update(ctx context.Context, pkg *models.StylePackage) error {
	logFields := []zap.Field{zap.String("packageID", pkg.ID.String()), zap.String("slug", pkg.Slug)}
	r.logger.Debug("Updating style package", logFields...)

	pkg.UpdatedAt = time.Now().UTC()
	commandTag, err := r.db.Exec(ctx, updateStylePackageQuery,
		pkg.Slug, pkg.Name, pkg.Status, pkg.DefaultSettings, pkg.StepKeys, pkg.UpdatedAt, pkg.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update style package", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления пакета стилей %s: %w", pkg.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent style package", logFields...)
		return models.ErrPackageNotFound
	}
	r.logger.Info("Style package updated successfully", logFields...)
	return nil
}

// Archive переводит пакет в статус archived. Повторная архивация не ошибка:
// RowsAffected == 0 на уже архивном пакете отличаем отдельным чтением.
func (r *pgStylePackageRepository) Archive(ctx context.Context, id uuid.UUID) error {
	logFields := []zap.Field{zap.String("packageID", id.String())}
	r.logger.Debug("Archiving style package", logFields...)

	commandTag, err := r.db.Exec(ctx, archiveStylePackageQuery,
		models.PackageStatusArchived, time.Now().UTC(), id,
	)
	if err != nil {
		r.logger.Error("Failed to archive style package", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка архивации пакета стилей %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			r.logger.Warn("Attempted to archive non-existent style package", logFields...)
			return models.ErrPackageNotFound
		}
		// Пакет существует и уже в архиве, операция идемпотентна.
		r.logger.Debug("Style package already archived", logFields...)
		return nil
	}
	r.logger.Info("Style package archived successfully", logFields...)
	return nil
}
