package completion

import (
	"headshot-server/shared/models"
	"headshot-server/shared/utils"

	"github.com/google/uuid"
)

// EvaluationInput is one full snapshot of a customization session. The
// evaluator reads it and nothing else: no storage, no clock, no I/O.
type EvaluationInput struct {
	// StyleSettings is the current settings snapshot. Missing keys mean the
	// category is not applicable to this package.
	StyleSettings models.StyleSettings

	// OriginalContextSettings is the baseline captured when the package or
	// context was selected. nil means nothing was selected yet; every
	// non-predefined step then counts as unedited.
	OriginalContextSettings models.StyleSettings

	// PackageID scopes the caller's visited-step persistence. Оно не
	// участвует в сравнении значений и на результат не влияет.
	PackageID uuid.UUID

	// StepKeys defines what "step N" means. nil while package metadata is
	// still loading; the evaluator then returns a neutral result instead
	// of blocking generation on missing metadata.
	StepKeys []models.CategoryKey

	// VisitedStepKeys is the desktop visited set.
	VisitedStepKeys []models.CategoryKey

	// IsMobileViewport selects which visited set governs the
	// clothing-colors visitation check.
	IsMobileViewport bool

	// VisitedMobileStepKeys is the mobile swipe-visited set.
	VisitedMobileStepKeys []models.CategoryKey

	// CompletionMode: текущие вызывающие используют только values-only,
	// неизвестные режимы оцениваются так же.
	CompletionMode models.CompletionMode

	// IncludeDefaultValues: when true, an unset value inherits the package
	// default for comparison purposes, so "left everything as is" shows up
	// as unedited instead of being silently skipped. When false, a field
	// without a baseline entry is treated as edited so that it cannot
	// block the gate before the baseline exists.
	IncludeDefaultValues bool

	// ClothingColorsEditableWhenMissing enables the clothing-colors special
	// case: absent from StepKeys means exempt, present means visitation is
	// required (see Evaluate).
	ClothingColorsEditableWhenMissing bool

	// AcceptedOnVisitKeys lists categories where "edited" means "visited".
	// Для них валидный выбор может совпадать со значением по умолчанию,
	// сравнение значений пометило бы их как нетронутые навсегда.
	AcceptedOnVisitKeys []models.CategoryKey

	// AcceptedOnVisitVisitedKeys is the visited set consulted for
	// AcceptedOnVisitKeys.
	AcceptedOnVisitVisitedKeys []models.CategoryKey
}

// DefaultAcceptedOnVisitKeys returns the canonical accepted-on-visit set
// used by the customization UI.
func DefaultAcceptedOnVisitKeys() []models.CategoryKey {
	return []models.CategoryKey{
		models.CategoryClothing,
		models.CategoryClothingColors,
		models.CategoryPose,
		models.CategoryExpression,
		models.CategoryBranding,
	}
}

// Evaluate решает по каждому шагу, "разобрался" ли с ним пользователь, и
// сводит это в один гейт завершённости плюс индексы посещённых шагов для
// прогресс-индикатора.
//
// Per-step rules, in order:
//  1. mode == predefined: always handled, a locked choice never blocks.
//  2. key in AcceptedOnVisitKeys: handled iff the key is in
//     AcceptedOnVisitVisitedKeys. Value equality is never consulted.
//  3. clothingColors (when ClothingColorsEditableWhenMissing is set and the
//     key is not covered by rule 2): handled iff visited under the active
//     viewport's visited set. Setting a value is not enough.
//  4. otherwise: handled iff the value structurally differs from the
//     baseline, with the IncludeDefaultValues refinements described on the
//     input fields.
//
// The function is total: malformed or partial input degrades to "unedited",
// it never panics and never returns an error.
func Evaluate(in EvaluationInput) models.CompletionResult {
	if len(in.StepKeys) == 0 {
		return neutralResult()
	}

	ev := &evaluation{
		in:              &in,
		accepted:        keySet(in.AcceptedOnVisitKeys),
		acceptedVisited: keySet(in.AcceptedOnVisitVisitedKeys),
	}
	if in.IsMobileViewport {
		ev.viewportVisited = keySet(in.VisitedMobileStepKeys)
	} else {
		ev.viewportVisited = keySet(in.VisitedStepKeys)
	}

	unedited := make([]models.CategoryKey, 0, len(in.StepKeys))
	visitedIndices := make([]int, 0, len(in.StepKeys))
	for i, key := range in.StepKeys {
		if ev.stepHandled(key) {
			visitedIndices = append(visitedIndices, i)
		} else {
			unedited = append(unedited, key)
		}
	}

	return models.CompletionResult{
		UneditedFields:                     unedited,
		HasUneditedFields:                  len(unedited) > 0,
		IsCustomizationComplete:            len(unedited) == 0,
		ValueBasedVisitedStepIndices:       visitedIndices,
		HasVisitedClothingColorsIfEditable: ev.hasVisitedClothingColors(),
	}
}

// evaluation держит предвычисленные множества на время одного вызова.
type evaluation struct {
	in              *EvaluationInput
	accepted        map[models.CategoryKey]bool
	acceptedVisited map[models.CategoryKey]bool
	viewportVisited map[models.CategoryKey]bool
}

func (ev *evaluation) stepHandled(key models.CategoryKey) bool {
	if ev.in.StyleSettings[key].IsPredefined() {
		return true
	}
	if ev.accepted[key] {
		return ev.acceptedVisited[key]
	}
	if key == models.CategoryClothingColors && ev.in.ClothingColorsEditableWhenMissing {
		// Посещение обязательно даже в режиме values-only: выставленное
		// значение само по себе шаг не закрывает.
		return ev.viewportVisited[key]
	}
	return ev.valueEdited(key)
}

// valueEdited is the ordinary value-diff check of completion mode
// values-only (the only mode current callers exercise).
func (ev *evaluation) valueEdited(key models.CategoryKey) bool {
	if ev.in.OriginalContextSettings == nil {
		// Базовой линии ещё нет: пользователь обязан сделать хотя бы один
		// явный выбор, все поля считаются нетронутыми.
		return false
	}

	baseline, baselineExists := ev.in.OriginalContextSettings[key]
	current := ev.in.StyleSettings[key]

	if !baselineExists || baseline.Value == nil {
		if !ev.in.IncludeDefaultValues {
			// Сравнивать не с чем; считаем отредактированным, чтобы поле
			// не блокировало гейт до появления базовой линии.
			return true
		}
		return !utils.ValueEqual(current.Value, nil)
	}

	if ev.in.IncludeDefaultValues && current.Value == nil {
		// Unset value inherits the package default in the UI, so it still
		// equals the baseline: flag it as unedited.
		return false
	}
	return !utils.ValueEqual(current.Value, baseline.Value)
}

// hasVisitedClothingColors: true when clothing colors are not an editable
// step of this package at all, or when they are and the step was visited
// under the active viewport.
func (ev *evaluation) hasVisitedClothingColors() bool {
	key := models.CategoryClothingColors
	editable := false
	for _, stepKey := range ev.in.StepKeys {
		if stepKey == key {
			editable = !ev.in.StyleSettings[key].IsPredefined()
			break
		}
	}
	if !editable {
		return true
	}
	return ev.viewportVisited[key]
}

func neutralResult() models.CompletionResult {
	return models.CompletionResult{
		UneditedFields:                     []models.CategoryKey{},
		HasUneditedFields:                  false,
		IsCustomizationComplete:            true,
		ValueBasedVisitedStepIndices:       []int{},
		HasVisitedClothingColorsIfEditable: true,
	}
}

func keySet(keys []models.CategoryKey) map[models.CategoryKey]bool {
	set := make(map[models.CategoryKey]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}
