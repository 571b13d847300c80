package models

import (
	"headshot-server/shared/utils"
)

// CategoryKey identifies one customization category (one step of the
// customization flow).
type CategoryKey string

// Канонические категории, которые знает UI кастомизации. Пакеты могут
// добавлять собственные категории, константы покрывают встроенный набор.
const (
	CategoryBackground     CategoryKey = "background"
	CategoryClothing       CategoryKey = "clothing"
	CategoryClothingColors CategoryKey = "clothingColors"
	CategoryShotType       CategoryKey = "shotType"
	CategoryBranding       CategoryKey = "branding"
	CategoryExpression     CategoryKey = "expression"
	CategoryPose           CategoryKey = "pose"
	CategoryCustomClothing CategoryKey = "customClothing"
)

// SettingMode determines who controls a category's value.
type SettingMode string

const (
	// ModeUserChoice - поле свободно редактируется пользователем.
	ModeUserChoice SettingMode = "user-choice"
	// ModePredefined - значение зафиксировано администратором пакета,
	// пользователь его не меняет и оно никогда не блокирует завершение.
	ModePredefined SettingMode = "predefined"
)

// SettingValue describes a single settings field: who controls it and the
// current selection. Value is deliberately untyped because its shape is
// category-specific (string enum, color map, bool); an absent Value means
// the field has not been chosen yet.
type SettingValue struct {
	Mode  SettingMode `json:"mode"`
	Value any         `json:"value,omitempty"`
}

// IsPredefined reports whether the field is locked by an administrator.
func (v SettingValue) IsPredefined() bool {
	return v.Mode == ModePredefined
}

// HasValue reports whether a selection exists for the field.
func (v SettingValue) HasValue() bool {
	return v.Value != nil
}

// StyleSettings maps category keys to their current value descriptors.
type StyleSettings map[CategoryKey]SettingValue

// Clone returns a deep copy. Values are copied structurally so mutating the
// clone never leaks into the original snapshot.
func (s StyleSettings) Clone() StyleSettings {
	if s == nil {
		return nil
	}
	out := make(StyleSettings, len(s))
	for key, field := range s {
		out[key] = SettingValue{
			Mode:  field.Mode,
			Value: utils.CloneValue(field.Value),
		}
	}
	return out
}

// MergePreferences накатывает сохранённые пользовательские предпочтения.
// Поля с Mode == predefined не трогаем: выбор администратора никогда не
// перезаписывается данными пользовательского происхождения. Режим
// существующего поля merge тоже не меняет.
func (s StyleSettings) MergePreferences(prefs StyleSettings) {
	for key, pref := range prefs {
		current, exists := s[key]
		if exists && current.Mode == ModePredefined {
			continue
		}
		mode := ModeUserChoice
		if exists && current.Mode != "" {
			mode = current.Mode
		}
		s[key] = SettingValue{Mode: mode, Value: utils.CloneValue(pref.Value)}
	}
}

// ValueFor returns the current value for a key; nil when the key is absent
// or has no selection. Absent key and nil value are deliberately
// indistinguishable here, comparisons treat them the same way.
func (s StyleSettings) ValueFor(key CategoryKey) any {
	if s == nil {
		return nil
	}
	return s[key].Value
}
