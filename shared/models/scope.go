package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ScopeKind различает источники настроек: индивидуальный пакет стилей или
// командный контекст. От вида зависит только ключ хранения посещённых шагов.
type ScopeKind string

const (
	ScopeKindPackage ScopeKind = "package"
	ScopeKindContext ScopeKind = "context"
)

// CompletionScope is the persistence namespace for accepted step visits.
// Visited sets are stored per scope and reset whenever the scope changes.
type CompletionScope struct {
	Kind ScopeKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// PackageScope returns the scope for an individual style package.
func PackageScope(id uuid.UUID) CompletionScope {
	return CompletionScope{Kind: ScopeKindPackage, ID: id}
}

// ContextScope returns the scope for a team context.
func ContextScope(id uuid.UUID) CompletionScope {
	return CompletionScope{Kind: ScopeKindContext, ID: id}
}

// IsZero reports whether no scope has been selected yet.
func (s CompletionScope) IsZero() bool {
	return s.Kind == "" && s.ID == uuid.Nil
}

// StorageKey serializes the scope as "package_<id>" / "context_<id>",
// the key format the session store contract requires.
func (s CompletionScope) StorageKey() string {
	return fmt.Sprintf("%s_%s", s.Kind, s.ID)
}

// String implements fmt.Stringer for log fields.
func (s CompletionScope) String() string {
	return s.StorageKey()
}
