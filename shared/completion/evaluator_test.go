package completion_test

import (
	"testing"

	"headshot-server/shared/completion"
	sharedModels "headshot-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Настройки с одним user-choice полем на каждый ключ.
func userChoiceSettings(values map[sharedModels.CategoryKey]any) sharedModels.StyleSettings {
	settings := make(sharedModels.StyleSettings, len(values))
	for key, value := range values {
		settings[key] = sharedModels.SettingValue{Mode: sharedModels.ModeUserChoice, Value: value}
	}
	return settings
}

func TestEvaluate_NeutralResultWithoutStepKeys(t *testing.T) {
	// Метаданные пакета ещё не загружены: гейт не должен блокировать.
	result := completion.Evaluate(completion.EvaluationInput{
		StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryBackground: "office",
		}),
		StepKeys: nil,
	})

	assert.Empty(t, result.UneditedFields)
	assert.False(t, result.HasUneditedFields)
	assert.True(t, result.IsCustomizationComplete)
	assert.Empty(t, result.ValueBasedVisitedStepIndices)
	assert.True(t, result.HasVisitedClothingColorsIfEditable)
}

func TestEvaluate_BaselineAbsent(t *testing.T) {
	stepKeys := []sharedModels.CategoryKey{sharedModels.CategoryBackground, sharedModels.CategoryClothing}

	t.Run("every field unedited until a baseline exists", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: "office",
				sharedModels.CategoryClothing:   "suit",
			}),
			OriginalContextSettings: nil,
			StepKeys:                stepKeys,
		})

		assert.Equal(t, stepKeys, result.UneditedFields)
		assert.True(t, result.HasUneditedFields)
		assert.False(t, result.IsCustomizationComplete)
		assert.Empty(t, result.ValueBasedVisitedStepIndices)
	})

	t.Run("predefined fields are exempt even without a baseline", func(t *testing.T) {
		settings := userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryClothing: "suit",
		})
		settings[sharedModels.CategoryBackground] = sharedModels.SettingValue{
			Mode:  sharedModels.ModePredefined,
			Value: "studio",
		}

		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:           settings,
			OriginalContextSettings: nil,
			StepKeys:                stepKeys,
		})

		assert.Equal(t, []sharedModels.CategoryKey{sharedModels.CategoryClothing}, result.UneditedFields)
		assert.Equal(t, []int{0}, result.ValueBasedVisitedStepIndices)
		assert.False(t, result.IsCustomizationComplete)
	})
}

func TestEvaluate_PredefinedNeverBlocks(t *testing.T) {
	// Заблокированный администратором выбор не попадает в unedited ни при
	// каком сочетании значений и посещений.
	baseline := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryBackground: "studio",
	})
	for _, value := range []any{nil, "studio", "beach", map[string]any{"primary": "#fff"}} {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings: sharedModels.StyleSettings{
				sharedModels.CategoryBackground: {Mode: sharedModels.ModePredefined, Value: value},
			},
			OriginalContextSettings: baseline,
			StepKeys:                []sharedModels.CategoryKey{sharedModels.CategoryBackground},
		})

		assert.NotContains(t, result.UneditedFields, sharedModels.CategoryBackground)
		assert.True(t, result.IsCustomizationComplete)
	}
}

func TestEvaluate_AcceptedOnVisitKeys(t *testing.T) {
	stepKeys := []sharedModels.CategoryKey{sharedModels.CategoryClothing}
	settings := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryClothing: "suit",
	})
	baseline := settings.Clone()

	t.Run("visited counts as edited even when the value equals the default", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:              settings,
			OriginalContextSettings:    baseline,
			StepKeys:                   stepKeys,
			AcceptedOnVisitKeys:        []sharedModels.CategoryKey{sharedModels.CategoryClothing},
			AcceptedOnVisitVisitedKeys: []sharedModels.CategoryKey{sharedModels.CategoryClothing},
		})

		assert.NotContains(t, result.UneditedFields, sharedModels.CategoryClothing)
		assert.True(t, result.IsCustomizationComplete)
		assert.Equal(t, []int{0}, result.ValueBasedVisitedStepIndices)
	})

	t.Run("changed value does not count without a visit", func(t *testing.T) {
		edited := userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryClothing: "hoodie",
		})
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:              edited,
			OriginalContextSettings:    baseline,
			StepKeys:                   stepKeys,
			AcceptedOnVisitKeys:        []sharedModels.CategoryKey{sharedModels.CategoryClothing},
			AcceptedOnVisitVisitedKeys: nil,
		})

		assert.Contains(t, result.UneditedFields, sharedModels.CategoryClothing)
		assert.False(t, result.IsCustomizationComplete)
	})
}

func TestEvaluate_ValueDiff(t *testing.T) {
	stepKeys := []sharedModels.CategoryKey{sharedModels.CategoryBackground, sharedModels.CategoryShotType}
	baseline := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryBackground: "studio",
		sharedModels.CategoryShotType:   "half-body",
	})

	t.Run("differing value marks the step edited", func(t *testing.T) {
		settings := userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryBackground: "beach",
			sharedModels.CategoryShotType:   "half-body",
		})
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:           settings,
			OriginalContextSettings: baseline,
			StepKeys:                stepKeys,
		})

		assert.Equal(t, []sharedModels.CategoryKey{sharedModels.CategoryShotType}, result.UneditedFields)
		assert.Equal(t, []int{0}, result.ValueBasedVisitedStepIndices)
		assert.False(t, result.IsCustomizationComplete)
	})

	t.Run("comparison is structural, not reference based", func(t *testing.T) {
		colorBaseline := sharedModels.StyleSettings{
			sharedModels.CategoryBackground: {
				Mode:  sharedModels.ModeUserChoice,
				Value: map[string]any{"primary": "#101010", "secondary": "#fafafa"},
			},
		}
		// Другой порядок вставки ключей структурно совпадает с базой.
		settings := sharedModels.StyleSettings{
			sharedModels.CategoryBackground: {
				Mode:  sharedModels.ModeUserChoice,
				Value: map[string]any{"secondary": "#fafafa", "primary": "#101010"},
			},
		}
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:           settings,
			OriginalContextSettings: colorBaseline,
			StepKeys:                []sharedModels.CategoryKey{sharedModels.CategoryBackground},
		})

		assert.Contains(t, result.UneditedFields, sharedModels.CategoryBackground)
	})
}

func TestEvaluate_IncludeDefaultValues(t *testing.T) {
	stepKeys := []sharedModels.CategoryKey{sharedModels.CategoryBackground}

	t.Run("missing baseline entry is edited when defaults are excluded", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: nil,
			}),
			OriginalContextSettings: sharedModels.StyleSettings{},
			StepKeys:                stepKeys,
			IncludeDefaultValues:    false,
		})

		assert.Empty(t, result.UneditedFields)
		assert.True(t, result.IsCustomizationComplete)
	})

	t.Run("missing baseline entry with unset value is unedited when defaults are included", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: nil,
			}),
			OriginalContextSettings: sharedModels.StyleSettings{},
			StepKeys:                stepKeys,
			IncludeDefaultValues:    true,
		})

		assert.Equal(t, []sharedModels.CategoryKey{sharedModels.CategoryBackground}, result.UneditedFields)
	})

	t.Run("unset value inherits the package default", func(t *testing.T) {
		baseline := userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryBackground: "studio",
		})
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: nil,
			}),
			OriginalContextSettings: baseline,
			StepKeys:                stepKeys,
			IncludeDefaultValues:    true,
		})

		assert.Equal(t, []sharedModels.CategoryKey{sharedModels.CategoryBackground}, result.UneditedFields)
	})
}

func TestEvaluate_ClothingColors(t *testing.T) {
	ccKey := sharedModels.CategoryClothingColors
	baseline := userChoiceSettings(map[sharedModels.CategoryKey]any{
		ccKey: map[string]any{"primary": "#202020"},
	})

	t.Run("absent from step keys means exempt", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:                     baseline.Clone(),
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{sharedModels.CategoryBackground},
			ClothingColorsEditableWhenMissing: true,
		})

		assert.NotContains(t, result.UneditedFields, ccKey)
		assert.True(t, result.HasVisitedClothingColorsIfEditable)
	})

	t.Run("present requires a viewport visit, value alone is not enough", func(t *testing.T) {
		edited := userChoiceSettings(map[sharedModels.CategoryKey]any{
			ccKey: map[string]any{"primary": "#ff0000"},
		})
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:                     edited,
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{ccKey},
			ClothingColorsEditableWhenMissing: true,
		})

		assert.Contains(t, result.UneditedFields, ccKey)
		assert.False(t, result.HasVisitedClothingColorsIfEditable)
	})

	t.Run("desktop visit closes the step on desktop", func(t *testing.T) {
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:                     baseline.Clone(),
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{ccKey},
			VisitedStepKeys:                   []sharedModels.CategoryKey{ccKey},
			ClothingColorsEditableWhenMissing: true,
		})

		assert.Empty(t, result.UneditedFields)
		assert.True(t, result.HasVisitedClothingColorsIfEditable)
	})

	t.Run("mobile viewport consults the mobile visited set", func(t *testing.T) {
		input := completion.EvaluationInput{
			StyleSettings:                     baseline.Clone(),
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{ccKey},
			VisitedMobileStepKeys:             []sharedModels.CategoryKey{ccKey},
			ClothingColorsEditableWhenMissing: true,
		}

		input.IsMobileViewport = true
		mobile := completion.Evaluate(input)
		assert.Empty(t, mobile.UneditedFields)
		assert.True(t, mobile.HasVisitedClothingColorsIfEditable)

		// Та же картина на десктопе не засчитывается: там свой набор.
		input.IsMobileViewport = false
		desktop := completion.Evaluate(input)
		assert.Contains(t, desktop.UneditedFields, ccKey)
		assert.False(t, desktop.HasVisitedClothingColorsIfEditable)
	})

	t.Run("accepted-on-visit rule wins for the unedited list", func(t *testing.T) {
		// clothingColors числится в accepted-on-visit: принятие шага
		// закрывает unedited, но флаг посещения остаётся за вьюпортом.
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:                     baseline.Clone(),
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{ccKey},
			AcceptedOnVisitKeys:               completion.DefaultAcceptedOnVisitKeys(),
			AcceptedOnVisitVisitedKeys:        []sharedModels.CategoryKey{ccKey},
			ClothingColorsEditableWhenMissing: true,
		})

		assert.Empty(t, result.UneditedFields)
		assert.False(t, result.HasVisitedClothingColorsIfEditable)
	})

	t.Run("predefined clothing colors do not require visits", func(t *testing.T) {
		settings := sharedModels.StyleSettings{
			ccKey: {Mode: sharedModels.ModePredefined, Value: map[string]any{"primary": "#000"}},
		}
		result := completion.Evaluate(completion.EvaluationInput{
			StyleSettings:                     settings,
			OriginalContextSettings:           baseline,
			StepKeys:                          []sharedModels.CategoryKey{ccKey},
			ClothingColorsEditableWhenMissing: true,
		})

		assert.Empty(t, result.UneditedFields)
		assert.True(t, result.HasVisitedClothingColorsIfEditable)
	})
}

func TestEvaluate_PackageSwitchResetsProgress(t *testing.T) {
	stepKeys := []sharedModels.CategoryKey{sharedModels.CategoryBackground, sharedModels.CategoryClothing}
	firstDefaults := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryBackground: "studio",
		sharedModels.CategoryClothing:   "suit",
	})

	// Пользователь закончил кастомизацию первого пакета.
	edited := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryBackground: "beach",
		sharedModels.CategoryClothing:   "suit",
	})
	before := completion.Evaluate(completion.EvaluationInput{
		StyleSettings:              edited,
		OriginalContextSettings:    firstDefaults,
		StepKeys:                   stepKeys,
		AcceptedOnVisitKeys:        []sharedModels.CategoryKey{sharedModels.CategoryClothing},
		AcceptedOnVisitVisitedKeys: []sharedModels.CategoryKey{sharedModels.CategoryClothing},
	})
	require.True(t, before.IsCustomizationComplete)

	// Смена пакета: базовая линия замещается новыми дефолтами, настройки
	// инициализируются их копией, посещённые наборы очищаются.
	secondDefaults := userChoiceSettings(map[sharedModels.CategoryKey]any{
		sharedModels.CategoryBackground: "office",
		sharedModels.CategoryClothing:   "blazer",
	})
	after := completion.Evaluate(completion.EvaluationInput{
		StyleSettings:              secondDefaults.Clone(),
		OriginalContextSettings:    secondDefaults,
		StepKeys:                   stepKeys,
		AcceptedOnVisitKeys:        []sharedModels.CategoryKey{sharedModels.CategoryClothing},
		AcceptedOnVisitVisitedKeys: nil,
	})

	assert.False(t, after.IsCustomizationComplete)
	assert.Equal(t, stepKeys, after.UneditedFields)
}

func TestEvaluate_Idempotence(t *testing.T) {
	input := completion.EvaluationInput{
		StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryBackground:     "beach",
			sharedModels.CategoryClothing:       "suit",
			sharedModels.CategoryClothingColors: map[string]any{"primary": "#123456"},
		}),
		OriginalContextSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
			sharedModels.CategoryBackground:     "studio",
			sharedModels.CategoryClothing:       "suit",
			sharedModels.CategoryClothingColors: map[string]any{"primary": "#123456"},
		}),
		PackageID: uuid.New(),
		StepKeys: []sharedModels.CategoryKey{
			sharedModels.CategoryBackground,
			sharedModels.CategoryClothing,
			sharedModels.CategoryClothingColors,
		},
		VisitedStepKeys:                   []sharedModels.CategoryKey{sharedModels.CategoryClothingColors},
		CompletionMode:                    sharedModels.CompletionModeValuesOnly,
		ClothingColorsEditableWhenMissing: true,
		AcceptedOnVisitKeys:               completion.DefaultAcceptedOnVisitKeys(),
		AcceptedOnVisitVisitedKeys:        []sharedModels.CategoryKey{sharedModels.CategoryClothing},
	}

	first := completion.Evaluate(input)
	second := completion.Evaluate(input)

	assert.Equal(t, first, second)
}

func TestEvaluate_CompletionEquivalence(t *testing.T) {
	// Инвариант агрегата на наборе разнородных входов.
	inputs := []completion.EvaluationInput{
		{},
		{StepKeys: []sharedModels.CategoryKey{sharedModels.CategoryBackground}},
		{
			StyleSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: "beach",
			}),
			OriginalContextSettings: userChoiceSettings(map[sharedModels.CategoryKey]any{
				sharedModels.CategoryBackground: "studio",
			}),
			StepKeys: []sharedModels.CategoryKey{sharedModels.CategoryBackground},
		},
		{
			StyleSettings:           nil,
			OriginalContextSettings: nil,
			StepKeys: []sharedModels.CategoryKey{
				sharedModels.CategoryBackground,
				sharedModels.CategoryPose,
			},
		},
	}

	for _, input := range inputs {
		result := completion.Evaluate(input)
		assert.Equal(t, len(result.UneditedFields) == 0, result.IsCustomizationComplete)
		assert.Equal(t, len(result.UneditedFields) > 0, result.HasUneditedFields)
	}
}

func TestEvaluate_MalformedInputDegradesWithoutPanic(t *testing.T) {
	// Полностью пустой снапшот настроек не роняет вычисление: шаги просто
	// остаются непосещёнными.
	result := completion.Evaluate(completion.EvaluationInput{
		StyleSettings:           nil,
		OriginalContextSettings: nil,
		StepKeys: []sharedModels.CategoryKey{
			sharedModels.CategoryBackground,
			sharedModels.CategoryClothing,
		},
		AcceptedOnVisitKeys: completion.DefaultAcceptedOnVisitKeys(),
	})

	assert.False(t, result.IsCustomizationComplete)
	assert.Len(t, result.UneditedFields, 2)
}
