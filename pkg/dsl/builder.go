package dsl

import (
	"github.com/aretw0/tgquest/internal/validator"
	"github.com/aretw0/tgquest/pkg/domain"
)

// Builder accumulates screens in declaration order.
type Builder struct {
	initial string
	order   []string
	screens map[string]*ScreenBuilder
}

// New creates a builder whose quest starts on initial.
func New(initial string) *Builder {
	return &Builder{
		initial: initial,
		screens: make(map[string]*ScreenBuilder),
	}
}

// Screen returns the builder for id, creating the screen on first use.
func (b *Builder) Screen(id string) *ScreenBuilder {
	if sb, ok := b.screens[id]; ok {
		return sb
	}
	sb := &ScreenBuilder{screen: domain.Screen{ID: id}}
	b.screens[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build validates and returns the document. Validation failures come back
// as *domain.ConfigErrors.
func (b *Builder) Build() (*domain.QuestDocument, error) {
	doc := &domain.QuestDocument{
		InitialScreen: b.initial,
		Screens:       make(map[string]*domain.Screen, len(b.screens)),
		Order:         append([]string(nil), b.order...),
	}
	for _, id := range b.order {
		screen := b.screens[id].Build()
		doc.Screens[id] = &screen
	}
	if err := validator.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
