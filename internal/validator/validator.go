package validator

import (
	"fmt"
	"sort"

	"github.com/aretw0/tgquest/pkg/domain"
	"golang.org/x/text/language"
)

// Validate checks every cross reference of the document in one pass.
// It returns nil or a *domain.ConfigErrors listing all defects.
func Validate(doc *domain.QuestDocument) error {
	var errs []*domain.ConfigError
	fail := func(screen, path, format string, args ...any) {
		errs = append(errs, &domain.ConfigError{Screen: screen, Path: path, Reason: fmt.Sprintf(format, args...)})
	}

	if doc.InitialScreen == "" {
		fail("", "initial_screen", "is required")
	} else if doc.Screen(doc.InitialScreen) == nil {
		fail("", "initial_screen", "references unknown screen %q", doc.InitialScreen)
	}
	if len(doc.Screens) == 0 {
		fail("", "screens", "at least one screen is required")
	}

	for _, id := range screenIDs(doc) {
		screen := doc.Screens[id]
		switch {
		case !screen.Buttons.Declared:
			fail(id, "buttons", "is required")
		case screen.Buttons.Len() == 0:
			fail(id, "buttons", "at least one button is required")
		}

		for name, tag := range screen.Variables {
			if !tag.Valid() {
				fail(id, "variables."+name, "unknown type %q (want int, string or float)", tag)
			}
		}

		for r, row := range screen.Buttons.Rows {
			for _, b := range row {
				path := buttonPath(screen.Buttons, r, b.Target)
				if len(b.Exits) == 0 && doc.Screen(b.Target) == nil {
					fail(id, path, "references unknown screen %q", b.Target)
				}
				for i, exit := range b.Exits {
					if doc.Screen(exit) == nil {
						fail(id, fmt.Sprintf("%s.exits[%d]", path, i), "references unknown screen %q", exit)
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return &domain.ConfigErrors{Errors: errs}
	}
	return nil
}

// UndeclaredLanguages reports language overrides that no localized text of
// the document provides. Tags are compared in canonical form, so "EN" matches
// "en"; values that are not BCP 47 tags are compared as written. The override
// still applies, the new language just falls back to the first text entry.
func UndeclaredLanguages(doc *domain.QuestDocument) []string {
	declared := make(map[string]bool)
	add := func(spec domain.TextSpec) {
		for lang := range spec.ByLanguage {
			declared[canonical(lang)] = true
		}
	}
	for _, id := range screenIDs(doc) {
		screen := doc.Screens[id]
		add(screen.Text)
		screen.Buttons.Each(func(b domain.Button) bool {
			add(b.Text)
			return true
		})
	}

	var out []string
	for _, id := range screenIDs(doc) {
		screen := doc.Screens[id]
		for r, row := range screen.Buttons.Rows {
			for _, b := range row {
				if b.Language == "" || declared[canonical(b.Language)] {
					continue
				}
				path := buttonPath(screen.Buttons, r, b.Target)
				out = append(out, fmt.Sprintf("screen %q: %s.language: no text declares language %q", id, path, b.Language))
			}
		}
	}
	return out
}

func canonical(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// Unreachable lists screens no path from the initial screen leads to, in document order.
// They are legal but usually an authoring mistake.
func Unreachable(doc *domain.QuestDocument) []string {
	visited := make(map[string]bool)
	queue := []string{doc.InitialScreen}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		screen := doc.Screen(current)
		if screen == nil || visited[current] {
			continue
		}
		visited[current] = true

		screen.Buttons.Each(func(b domain.Button) bool {
			if len(b.Exits) == 0 {
				queue = append(queue, b.Target)
			}
			queue = append(queue, b.Exits...)
			return true
		})
	}

	var out []string
	for _, id := range screenIDs(doc) {
		if !visited[id] {
			out = append(out, id)
		}
	}
	return out
}

// screenIDs returns ids in document order, falling back to sorted order
// for documents built in code without Order.
func screenIDs(doc *domain.QuestDocument) []string {
	if len(doc.Order) == len(doc.Screens) {
		return doc.Order
	}
	ids := make([]string, 0, len(doc.Screens))
	for id := range doc.Screens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func buttonPath(layout domain.ButtonLayout, row int, key string) string {
	if layout.Grouped {
		return fmt.Sprintf("buttons.rows[%d].%s", row, key)
	}
	return "buttons." + key
}
