package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"headshot-server/shared/completion"
	"headshot-server/shared/interfaces"
	"headshot-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPersistDebounce = 300 * time.Millisecond
	flushTimeout           = 5 * time.Second
)

// Options задают режим вычисления завершённости для одной сессии.
// Нулевое значение пригодно к работе: режим values-only, канонический
// accepted-on-visit набор и дебаунс персистентности по умолчанию.
type Options struct {
	CompletionMode                    models.CompletionMode
	IncludeDefaultValues              bool
	ClothingColorsEditableWhenMissing bool
	// AcceptedOnVisitKeys: nil означает канонический набор.
	AcceptedOnVisitKeys []models.CategoryKey
	// PersistDebounce ограничивает частоту записи посещённых шагов в стор.
	PersistDebounce time.Duration
}

// Tracker owns one user's customization session: the current settings, the
// baseline captured at selection time and the visited-step bookkeeping.
// Evaluation itself stays pure; the tracker only materializes snapshots for
// it and debounces persistence of accepted visits, so evaluating is safe on
// every keystroke while the store sees batched writes.
//
// All methods are safe for concurrent use.
type Tracker struct {
	logger   *zap.Logger
	provider interfaces.StylePackageProvider
	store    interfaces.VisitedStepStore
	opts     Options

	mu               sync.Mutex
	scope            models.CompletionScope
	packageID        uuid.UUID
	stepKeys         []models.CategoryKey
	settings         models.StyleSettings
	original         models.StyleSettings
	acceptedVisited  map[models.CategoryKey]bool
	mobileVisited    map[models.CategoryKey]bool
	isMobileViewport bool

	persistTimer *time.Timer
	dirty        bool
	closed       bool
}

// NewTracker создает трекер сессии кастомизации.
func NewTracker(provider interfaces.StylePackageProvider, store interfaces.VisitedStepStore, logger *zap.Logger, opts Options) *Tracker {
	if opts.CompletionMode == "" {
		opts.CompletionMode = models.CompletionModeValuesOnly
	}
	if opts.AcceptedOnVisitKeys == nil {
		opts.AcceptedOnVisitKeys = completion.DefaultAcceptedOnVisitKeys()
	}
	if opts.PersistDebounce <= 0 {
		opts.PersistDebounce = defaultPersistDebounce
	}
	return &Tracker{
		logger:          logger.Named("CustomizationTracker"),
		provider:        provider,
		store:           store,
		opts:            opts,
		acceptedVisited: make(map[models.CategoryKey]bool),
		mobileVisited:   make(map[models.CategoryKey]bool),
	}
}

// SelectPackage переключает сессию на пакет стилей: базовая линия замещается
// целиком копией дефолтов пакета, наборы посещений сбрасываются, сохранённые
// accepted-посещения нового scope восстанавливаются из стора.
func (t *Tracker) SelectPackage(ctx context.Context, packageID uuid.UUID) error {
	pkg, err := t.provider.GetPackage(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to load style package: %w", err)
	}

	// Досохраняем хвост предыдущего scope, чтобы не потерять визиты.
	if err := t.Flush(ctx); err != nil {
		t.logger.Warn("Failed to flush previous scope before switch", zap.Error(err))
	}

	scope := models.PackageScope(packageID)
	restored := t.loadVisited(ctx, scope)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.scope = scope
	t.packageID = packageID
	t.original = pkg.DefaultSettings.Clone()
	t.settings = pkg.DefaultSettings.Clone()
	t.stepKeys = append([]models.CategoryKey(nil), pkg.StepKeys...)
	t.acceptedVisited = restored
	t.mobileVisited = make(map[models.CategoryKey]bool)
	t.dirty = false

	t.logger.Info("Выбран пакет стилей",
		zap.String("packageID", packageID.String()),
		zap.String("slug", pkg.Slug),
		zap.Int("steps", len(t.stepKeys)),
		zap.Int("restoredVisits", len(restored)))
	return nil
}

// SelectContext переключает сессию на командный контекст. Настройки и шаги
// приходят от хоста; nil defaults означает, что базовой линии ещё нет и все
// поля считаются нетронутыми до первого явного выбора.
func (t *Tracker) SelectContext(ctx context.Context, contextID uuid.UUID, defaults models.StyleSettings, stepKeys []models.CategoryKey) error {
	if err := t.Flush(ctx); err != nil {
		t.logger.Warn("Failed to flush previous scope before switch", zap.Error(err))
	}

	scope := models.ContextScope(contextID)
	restored := t.loadVisited(ctx, scope)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.scope = scope
	t.packageID = contextID
	t.original = defaults.Clone()
	t.settings = defaults.Clone()
	if t.settings == nil {
		t.settings = make(models.StyleSettings)
	}
	t.stepKeys = append([]models.CategoryKey(nil), stepKeys...)
	t.acceptedVisited = restored
	t.mobileVisited = make(map[models.CategoryKey]bool)
	t.dirty = false

	t.logger.Info("Выбран командный контекст",
		zap.String("contextID", contextID.String()),
		zap.Int("steps", len(t.stepKeys)),
		zap.Int("restoredVisits", len(restored)))
	return nil
}

// SetViewport фиксирует активный вьюпорт; от него зависит, какой набор
// посещений обслуживает шаг цветов одежды.
func (t *Tracker) SetViewport(isMobile bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isMobileViewport = isMobile
}

// UpdateSetting sets a user-choice value. Predefined fields are rejected:
// an administrator's locked choice is never overwritten from the session.
func (t *Tracker) UpdateSetting(key models.CategoryKey, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scope.IsZero() {
		return models.ErrNoActiveScope
	}
	current, exists := t.settings[key]
	if exists && current.IsPredefined() {
		return models.ErrFieldPredefined
	}
	if !exists && !t.knownStepKey(key) {
		return models.ErrUnknownField
	}

	t.settings[key] = models.SettingValue{Mode: models.ModeUserChoice, Value: value}
	return nil
}

// knownStepKey: ключ числится шагом текущего пакета.
func (t *Tracker) knownStepKey(key models.CategoryKey) bool {
	for _, stepKey := range t.stepKeys {
		if stepKey == key {
			return true
		}
	}
	return false
}

// ApplySavedPreferences накатывает сохранённые предпочтения пользователя
// поверх текущих настроек, не трогая predefined-поля.
func (t *Tracker) ApplySavedPreferences(prefs models.StyleSettings) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scope.IsZero() {
		return models.ErrNoActiveScope
	}
	t.settings.MergePreferences(prefs)
	return nil
}

// MarkStepViewed записывает просмотр шага в набор активного вьюпорта.
// Мобильные свайпы живут только в памяти; на десктопе просмотр считается
// accepted-посещением и попадает в отложенную запись.
func (t *Tracker) MarkStepViewed(key models.CategoryKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scope.IsZero() {
		return models.ErrNoActiveScope
	}
	if t.isMobileViewport {
		t.mobileVisited[key] = true
		return nil
	}
	t.acceptedVisited[key] = true
	t.scheduleFlushLocked()
	return nil
}

// AcceptStep фиксирует явное взаимодействие с шагом независимо от вьюпорта
// и планирует отложенную запись набора в стор.
func (t *Tracker) AcceptStep(key models.CategoryKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scope.IsZero() {
		return models.ErrNoActiveScope
	}
	t.acceptedVisited[key] = true
	if t.isMobileViewport {
		t.mobileVisited[key] = true
	}
	t.scheduleFlushLocked()
	return nil
}

// Evaluate собирает снапшот состояния и прогоняет его через чистый
// вычислитель завершённости.
func (t *Tracker) Evaluate() models.CompletionResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.evaluateLocked()
}

func (t *Tracker) evaluateLocked() models.CompletionResult {
	accepted := sortedKeys(t.acceptedVisited)
	result := completion.Evaluate(completion.EvaluationInput{
		StyleSettings:                     t.settings,
		OriginalContextSettings:           t.original,
		PackageID:                         t.packageID,
		StepKeys:                          t.stepKeys,
		VisitedStepKeys:                   accepted,
		IsMobileViewport:                  t.isMobileViewport,
		VisitedMobileStepKeys:             sortedKeys(t.mobileVisited),
		CompletionMode:                    t.opts.CompletionMode,
		IncludeDefaultValues:              t.opts.IncludeDefaultValues,
		ClothingColorsEditableWhenMissing: t.opts.ClothingColorsEditableWhenMissing,
		AcceptedOnVisitKeys:               t.opts.AcceptedOnVisitKeys,
		AcceptedOnVisitVisitedKeys:        accepted,
	})

	evaluationsTotal.Inc()
	if result.IsCustomizationComplete {
		completionsTotal.Inc()
	}
	return result
}

// GenerationGate reports whether the generate action may be enabled and,
// when it may not, a human-readable reason for the disabled state.
func (t *Tracker) GenerationGate() (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := t.evaluateLocked()
	if result.IsCustomizationComplete {
		return true, ""
	}

	names := make([]string, len(result.UneditedFields))
	for i, key := range result.UneditedFields {
		names[i] = string(key)
	}
	noun := "issues"
	if len(names) == 1 {
		noun = "issue"
	}
	return false, fmt.Sprintf("%d %s: %s", len(names), noun, strings.Join(names, ", "))
}

// Scope возвращает текущий scope сессии.
func (t *Tracker) Scope() models.CompletionScope {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scope
}

// CurrentSettings возвращает копию текущих настроек.
func (t *Tracker) CurrentSettings() models.StyleSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings.Clone()
}

// Flush синхронно записывает накопленные accepted-посещения. Ошибка записи
// не ломает вычисление гейта: набор остаётся помеченным грязным и уйдёт со
// следующей попыткой.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	if !t.dirty || t.scope.IsZero() {
		t.mu.Unlock()
		return nil
	}
	scope := t.scope
	keys := sortedKeys(t.acceptedVisited)
	t.dirty = false
	t.mu.Unlock()

	if err := t.store.SaveVisited(ctx, scope, keys); err != nil {
		t.mu.Lock()
		t.dirty = true
		t.mu.Unlock()
		visitedPersistFailuresTotal.Inc()
		t.logger.Warn("Не удалось сохранить посещённые шаги",
			zap.String("scope", scope.StorageKey()),
			zap.Error(err))
		return fmt.Errorf("failed to persist visited steps: %w", err)
	}
	return nil
}

// Close останавливает таймер дебаунса и досохраняет хвост.
func (t *Tracker) Close() error {
	t.mu.Lock()
	t.closed = true
	if t.persistTimer != nil {
		t.persistTimer.Stop()
		t.persistTimer = nil
	}
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return t.Flush(ctx)
}

func (t *Tracker) scheduleFlushLocked() {
	t.dirty = true
	if t.closed {
		return
	}
	if t.persistTimer == nil {
		t.persistTimer = time.AfterFunc(t.opts.PersistDebounce, t.backgroundFlush)
		return
	}
	t.persistTimer.Reset(t.opts.PersistDebounce)
}

func (t *Tracker) backgroundFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	// Ошибка уже учтена в метрике и логе внутри Flush.
	_ = t.Flush(ctx)
}

func (t *Tracker) loadVisited(ctx context.Context, scope models.CompletionScope) map[models.CategoryKey]bool {
	keys, err := t.store.GetVisited(ctx, scope)
	if err != nil {
		// Недоступный стор не должен блокировать переключение пакета.
		t.logger.Warn("Не удалось прочитать посещённые шаги, набор считается пустым",
			zap.String("scope", scope.StorageKey()),
			zap.Error(err))
		return make(map[models.CategoryKey]bool)
	}
	set := make(map[models.CategoryKey]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}

// sortedKeys делает порядок снапшота детерминированным: одинаковое состояние
// всегда даёт структурно одинаковый вход вычислителя.
func sortedKeys(set map[models.CategoryKey]bool) []models.CategoryKey {
	keys := make([]models.CategoryKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
