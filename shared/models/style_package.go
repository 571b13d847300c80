package models

import (
	"time"

	"github.com/google/uuid"
)

// PackageStatus is the lifecycle state of a style package in the catalog.
type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "active"
	PackageStatusArchived PackageStatus = "archived"
)

// StylePackage is a named bundle of default style settings a user or team
// selects as the starting point for customization. DefaultSettings carries
// the per-category defaults together with the user-choice/predefined mode;
// StepKeys is the ordered list of editable steps the package exposes.
type StylePackage struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	Slug            string        `db:"slug" json:"slug"`
	Name            string        `db:"name" json:"name"`
	Status          PackageStatus `db:"status" json:"status"`
	DefaultSettings StyleSettings `db:"default_settings" json:"default_settings"`
	StepKeys        []CategoryKey `db:"step_keys" json:"step_keys"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// EditableStepKeys возвращает шаги, которые реально редактируются
// пользователем (predefined-категории из списка шагов выпадают).
func (p *StylePackage) EditableStepKeys() []CategoryKey {
	if p == nil || len(p.StepKeys) == 0 {
		return nil
	}
	keys := make([]CategoryKey, 0, len(p.StepKeys))
	for _, key := range p.StepKeys {
		if field, ok := p.DefaultSettings[key]; ok && field.Mode == ModePredefined {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
