package models_test

import (
	"testing"

	"headshot-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStyleSettingsClone(t *testing.T) {
	original := models.StyleSettings{
		models.CategoryBackground: {
			Mode:  models.ModeUserChoice,
			Value: map[string]any{"primary": "#101010"},
		},
	}

	cloned := original.Clone()
	colors := cloned[models.CategoryBackground].Value.(map[string]any)
	colors["primary"] = "#ffffff"

	assert.Equal(t, "#101010", original[models.CategoryBackground].Value.(map[string]any)["primary"])
}

func TestMergePreferencesKeepsPredefinedFields(t *testing.T) {
	settings := models.StyleSettings{
		models.CategoryBackground: {Mode: models.ModePredefined, Value: "studio"},
		models.CategoryClothing:   {Mode: models.ModeUserChoice, Value: "suit"},
	}

	settings.MergePreferences(models.StyleSettings{
		models.CategoryBackground: {Mode: models.ModeUserChoice, Value: "beach"},
		models.CategoryClothing:   {Mode: models.ModeUserChoice, Value: "hoodie"},
		models.CategoryPose:       {Mode: models.ModeUserChoice, Value: "standing"},
	})

	// Выбор администратора не перезаписывается пользовательскими данными.
	assert.Equal(t, "studio", settings[models.CategoryBackground].Value)
	assert.Equal(t, models.ModePredefined, settings[models.CategoryBackground].Mode)

	assert.Equal(t, "hoodie", settings[models.CategoryClothing].Value)
	assert.Equal(t, models.ModeUserChoice, settings[models.CategoryClothing].Mode)

	// Новые ключи добавляются как user-choice.
	assert.Equal(t, "standing", settings[models.CategoryPose].Value)
	assert.Equal(t, models.ModeUserChoice, settings[models.CategoryPose].Mode)
}

func TestMergePreferencesDoesNotFlipModes(t *testing.T) {
	settings := models.StyleSettings{
		models.CategoryClothing: {Mode: models.ModeUserChoice, Value: "suit"},
	}

	settings.MergePreferences(models.StyleSettings{
		models.CategoryClothing: {Mode: models.ModePredefined, Value: "hoodie"},
	})

	// Входящее предпочтение не может сделать поле predefined.
	assert.Equal(t, models.ModeUserChoice, settings[models.CategoryClothing].Mode)
	assert.Equal(t, "hoodie", settings[models.CategoryClothing].Value)
}

func TestCompletionScopeStorageKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	assert.Equal(t, "package_6ba7b810-9dad-11d1-80b4-00c04fd430c8", models.PackageScope(id).StorageKey())
	assert.Equal(t, "context_6ba7b810-9dad-11d1-80b4-00c04fd430c8", models.ContextScope(id).StorageKey())
	assert.True(t, models.CompletionScope{}.IsZero())
	assert.False(t, models.PackageScope(id).IsZero())
}

func TestEditableStepKeysSkipsPredefined(t *testing.T) {
	pkg := &models.StylePackage{
		DefaultSettings: models.StyleSettings{
			models.CategoryBackground: {Mode: models.ModePredefined, Value: "studio"},
			models.CategoryClothing:   {Mode: models.ModeUserChoice, Value: "suit"},
		},
		StepKeys: []models.CategoryKey{models.CategoryBackground, models.CategoryClothing, models.CategoryPose},
	}

	assert.Equal(t, []models.CategoryKey{models.CategoryClothing, models.CategoryPose}, pkg.EditableStepKeys())
}
