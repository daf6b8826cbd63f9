package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/tgquest/pkg/domain"
)

// Overlay highlights screens on the rendered graph.
type Overlay struct {
	Visited []string
	Current string
}

// Options tune the rendering.
type Options struct {
	// Language picks the label of localized buttons. Empty means domain.DefaultLanguage.
	Language string
	Overlay  *Overlay
}

// GenerateMermaid produces a Mermaid flowchart of the quest.
// Shapes:
// - initial screen: ((circle))
// - quest screen: [[subroutine]]
// - screen with a script: [/parallelogram/]
// - other screens: [rectangle]
//
// Plain buttons are solid arrows labelled with the button text. Random exits
// are dotted arrows marked with a die.
func GenerateMermaid(doc *domain.QuestDocument, opts Options) string {
	lang := opts.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range doc.Order {
		screen := doc.Screen(id)
		if screen == nil {
			continue
		}
		safeID := sanitizeID(id)

		opener, closer := "[", "]"
		switch {
		case id == doc.InitialScreen:
			opener, closer = "((", "))"
		case screen.Quest:
			opener, closer = "[[", "]]"
		case screen.HasScript:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, id, closer)

		screen.Buttons.Each(func(b domain.Button) bool {
			label := escapeLabel(buttonLabel(b.Text, lang))
			if len(b.Exits) == 0 {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeID(b.Target))
				return true
			}
			for _, exit := range b.Exits {
				fmt.Fprintf(&sb, "    %s -. \"🎲 %s\" .-> %s\n", safeID, label, sanitizeID(exit))
			}
			return true
		})
	}

	if o := opts.Overlay; o != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range o.Visited {
			safeID := sanitizeID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if o.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(o.Current))
		}
	}

	return sb.String()
}

// buttonLabel picks a readable label without a session: the literal, the
// requested language, or the first language in alphabetical order.
func buttonLabel(t domain.TextSpec, lang string) string {
	switch t.Kind {
	case domain.TextLiteral:
		return t.Literal
	case domain.TextLocalized:
		if s, ok := t.ByLanguage[lang]; ok {
			return s
		}
		keys := make([]string, 0, len(t.ByLanguage))
		for k := range t.ByLanguage {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if len(keys) > 0 {
			return t.ByLanguage[keys[0]]
		}
	}
	return "?"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// sanitizeID makes id a valid Mermaid node id. "end" is a keyword.
func sanitizeID(id string) string {
	s := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
	if strings.EqualFold(s, "end") {
		s += "_"
	}
	return s
}
