package catalog

import (
	"context"
	"fmt"
	"sync"

	"headshot-server/shared/interfaces"
	"headshot-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.StylePackageProvider = (*CatalogService)(nil)

// CatalogService управляет кэшем каталога пакетов стилей, загруженным из БД.
// Он обеспечивает потокобезопасный доступ к пакетам и принимает обновления
// от консьюмера событий каталога.
//
// Возвращаемые указатели на пакеты read-only для вызывающих; методы
// DefaultSettingsFor и StepKeysFor отдают копии, которые можно менять.
type CatalogService struct {
	logger *zap.Logger
	repo   interfaces.StylePackageRepository
	mu     sync.RWMutex
	byID   map[uuid.UUID]*models.StylePackage
	bySlug map[string]uuid.UUID
}

// NewCatalogService создает новый экземпляр CatalogService и загружает
// активные пакеты. Недоступность БД при старте считаем критичной.
func NewCatalogService(ctx context.Context, repo interfaces.StylePackageRepository, logger *zap.Logger) (*CatalogService, error) {
	cs := &CatalogService{
		logger: logger.Named("CatalogService"),
		repo:   repo,
		byID:   make(map[uuid.UUID]*models.StylePackage),
		bySlug: make(map[string]uuid.UUID),
	}

	cs.logger.Info("Загрузка каталога пакетов стилей...")
	if err := cs.Refresh(ctx); err != nil {
		cs.logger.Error("Не удалось загрузить каталог пакетов", zap.Error(err))
		return nil, err
	}

	return cs, nil
}

// Refresh перечитывает каталог целиком и замещает кэш.
func (cs *CatalogService) Refresh(ctx context.Context) error {
	packages, err := cs.repo.ListByStatuses(ctx, []models.PackageStatus{models.PackageStatusActive})
	if err != nil {
		return fmt.Errorf("failed to load style packages: %w", err)
	}

	byID := make(map[uuid.UUID]*models.StylePackage, len(packages))
	bySlug := make(map[string]uuid.UUID, len(packages))
	for _, pkg := range packages {
		byID[pkg.ID] = pkg
		bySlug[pkg.Slug] = pkg.ID
	}

	cs.mu.Lock()
	cs.byID = byID
	cs.bySlug = bySlug
	cs.mu.Unlock()

	catalogRefreshesTotal.Inc()
	cs.logger.Info("Каталог пакетов обновлён", zap.Int("count", len(byID)))
	return nil
}

// ApplyUpdate замещает одну запись кэша свежей версией пакета. Архивные
// пакеты из кэша выпадают.
func (cs *CatalogService) ApplyUpdate(pkg *models.StylePackage) {
	if pkg == nil {
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if old, ok := cs.byID[pkg.ID]; ok && old.Slug != pkg.Slug {
		delete(cs.bySlug, old.Slug)
	}
	if pkg.Status == models.PackageStatusArchived {
		delete(cs.byID, pkg.ID)
		delete(cs.bySlug, pkg.Slug)
		cs.logger.Info("Пакет стилей убран из кэша", zap.String("slug", pkg.Slug))
		return
	}

	cs.byID[pkg.ID] = pkg
	cs.bySlug[pkg.Slug] = pkg.ID
	cs.logger.Info("Пакет стилей обновлён в кэше",
		zap.String("packageID", pkg.ID.String()),
		zap.String("slug", pkg.Slug))
}

// RemovePackage выбрасывает пакет из кэша. Вызывается консьюмером событий
// при архивации.
func (cs *CatalogService) RemovePackage(packageID uuid.UUID, slug string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if old, ok := cs.byID[packageID]; ok {
		delete(cs.bySlug, old.Slug)
	}
	delete(cs.byID, packageID)
	delete(cs.bySlug, slug)
	cs.logger.Info("Пакет стилей убран из кэша", zap.String("packageID", packageID.String()), zap.String("slug", slug))
}

// RefreshPackage перечитывает один пакет из репозитория и обновляет кэш.
// Вызывается консьюмером событий при создании или изменении пакета.
func (cs *CatalogService) RefreshPackage(ctx context.Context, packageID uuid.UUID) error {
	pkg, err := cs.repo.GetByID(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to reload style package %s: %w", packageID, err)
	}
	cs.ApplyUpdate(pkg)
	return nil
}

// GetPackage возвращает пакет из кэша; при промахе пробует репозиторий,
// чтобы пакеты, созданные после загрузки, тоже находились.
func (cs *CatalogService) GetPackage(ctx context.Context, id uuid.UUID) (*models.StylePackage, error) {
	cs.mu.RLock()
	pkg, ok := cs.byID[id]
	cs.mu.RUnlock()
	if ok {
		return pkg, nil
	}

	pkg, err := cs.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cs.ApplyUpdate(pkg)
	return pkg, nil
}

// GetPackageBySlug возвращает пакет по slug, с тем же fallback в репозиторий.
func (cs *CatalogService) GetPackageBySlug(ctx context.Context, slug string) (*models.StylePackage, error) {
	cs.mu.RLock()
	id, ok := cs.bySlug[slug]
	var pkg *models.StylePackage
	if ok {
		pkg = cs.byID[id]
	}
	cs.mu.RUnlock()
	if pkg != nil {
		return pkg, nil
	}

	pkg, err := cs.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	cs.ApplyUpdate(pkg)
	return pkg, nil
}

// DefaultSettingsFor возвращает копию дефолтных настроек пакета.
func (cs *CatalogService) DefaultSettingsFor(ctx context.Context, id uuid.UUID) (models.StyleSettings, error) {
	pkg, err := cs.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	return pkg.DefaultSettings.Clone(), nil
}

// StepKeysFor возвращает копию упорядоченного списка шагов пакета.
func (cs *CatalogService) StepKeysFor(ctx context.Context, id uuid.UUID) ([]models.CategoryKey, error) {
	pkg, err := cs.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	keys := make([]models.CategoryKey, len(pkg.StepKeys))
	copy(keys, pkg.StepKeys)
	return keys, nil
}
