package models

// CompletionMode selects how "edited" is decided for ordinary fields.
// Текущие вызывающие используют только values-only; неизвестные режимы
// оцениваются так же, чтобы функция оставалась тотальной.
type CompletionMode string

const (
	// CompletionModeValuesOnly - поле считается отредактированным, если его
	// значение отличается от исходного, независимо от посещения шага
	// (кроме ключей из accepted-on-visit списка).
	CompletionModeValuesOnly CompletionMode = "values-only"
)

// CompletionResult is the derived outcome of a completion evaluation.
// It is recomputed from its inputs on every change and never persisted.
type CompletionResult struct {
	// UneditedFields lists the step keys the user has not dealt with yet,
	// in step order.
	UneditedFields []CategoryKey `json:"unedited_fields"`
	// HasUneditedFields == len(UneditedFields) > 0.
	HasUneditedFields bool `json:"has_unedited_fields"`
	// IsCustomizationComplete gates the downstream generate action.
	IsCustomizationComplete bool `json:"is_customization_complete"`
	// ValueBasedVisitedStepIndices are the positions in the step key list
	// whose fields count as edited; drives progress-dot fill state.
	ValueBasedVisitedStepIndices []int `json:"value_based_visited_step_indices"`
	// HasVisitedClothingColorsIfEditable is true when clothing colors are
	// not an editable step at all, or when they are and the step was
	// visited under the active viewport.
	HasVisitedClothingColorsIfEditable bool `json:"has_visited_clothing_colors_if_editable"`
}
