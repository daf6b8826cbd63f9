package dsl

import (
	"maps"

	"github.com/aretw0/tgquest/pkg/domain"
)

// ScreenBuilder provides a fluent API for configuring a screen.
type ScreenBuilder struct {
	screen domain.Screen
}

// Text sets a literal text, shown whatever the session language.
func (s *ScreenBuilder) Text(text string) *ScreenBuilder {
	s.screen.Text = domain.Literal(text)
	return s
}

// Localized sets per-language text. It keeps a prefix or suffix set before.
func (s *ScreenBuilder) Localized(byLanguage map[string]string) *ScreenBuilder {
	s.screen.Text.Kind = domain.TextLocalized
	s.screen.Text.ByLanguage = maps.Clone(byLanguage)
	return s
}

// Prefix decorates localized text; it is joined with a single space.
func (s *ScreenBuilder) Prefix(prefix string) *ScreenBuilder {
	s.screen.Text.Prefix = &prefix
	return s
}

// Suffix is appended to localized text as is.
func (s *ScreenBuilder) Suffix(suffix string) *ScreenBuilder {
	s.screen.Text.Suffix = &suffix
	return s
}

// Quest makes entering the screen start a fresh sandbox.
func (s *ScreenBuilder) Quest() *ScreenBuilder {
	s.screen.Quest = true
	return s
}

// Variable declares how a sandbox global is substituted into text.
func (s *ScreenBuilder) Variable(name string, tag domain.TypeTag) *ScreenBuilder {
	if s.screen.Variables == nil {
		s.screen.Variables = make(map[string]domain.TypeTag)
	}
	s.screen.Variables[name] = tag
	return s
}

// Script sets the code run on entry.
func (s *ScreenBuilder) Script(src string) *ScreenBuilder {
	s.screen.Script = src
	s.screen.HasScript = true
	return s
}

// Buttons appends buttons to a flat layout.
func (s *ScreenBuilder) Buttons(buttons ...ButtonSpec) *ScreenBuilder {
	layout := &s.screen.Buttons
	layout.Declared = true
	if len(layout.Rows) == 0 {
		layout.Rows = [][]domain.Button{nil}
	}
	last := len(layout.Rows) - 1
	for _, b := range buttons {
		layout.Rows[last] = append(layout.Rows[last], b.button)
	}
	return s
}

// Row appends one keyboard row and switches the layout to grouped.
func (s *ScreenBuilder) Row(buttons ...ButtonSpec) *ScreenBuilder {
	layout := &s.screen.Buttons
	if !layout.Grouped {
		layout.Rows = nil
	}
	layout.Declared = true
	layout.Grouped = true

	row := make([]domain.Button, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, b.button)
	}
	layout.Rows = append(layout.Rows, row)
	return s
}

// Build returns a copy of the screen.
func (s *ScreenBuilder) Build() domain.Screen {
	screen := s.screen
	screen.Variables = maps.Clone(s.screen.Variables)
	rows := make([][]domain.Button, len(s.screen.Buttons.Rows))
	for i, row := range s.screen.Buttons.Rows {
		rows[i] = append([]domain.Button(nil), row...)
	}
	screen.Buttons.Rows = rows
	return screen
}

// ButtonSpec is an immutable button description; each method returns a copy.
type ButtonSpec struct {
	button domain.Button
}

// To creates a button labelled label leading to target.
func To(target, label string) ButtonSpec {
	return ButtonSpec{button: domain.Button{Target: target, Text: domain.Literal(label)}}
}

// Label replaces the label with per-language text.
func (b ButtonSpec) Label(byLanguage map[string]string) ButtonSpec {
	b.button.Text = domain.Localized(maps.Clone(byLanguage))
	return b
}

// SetsLanguage switches the session language when the button is pressed.
func (b ButtonSpec) SetsLanguage(language string) ButtonSpec {
	b.button.Language = language
	return b
}

// Random makes the button lead to one of exits, drawn uniformly.
func (b ButtonSpec) Random(exits ...string) ButtonSpec {
	b.button.Exits = append([]string(nil), exits...)
	return b
}
