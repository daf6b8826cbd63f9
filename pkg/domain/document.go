package domain

// TypeTag declares how a sandbox global is read when substituted into screen text.
type TypeTag string

const (
	TypeInt    TypeTag = "int"
	TypeString TypeTag = "string"
	TypeFloat  TypeTag = "float"
)

// Valid reports whether the tag is one of the supported types.
func (t TypeTag) Valid() bool {
	switch t {
	case TypeInt, TypeString, TypeFloat:
		return true
	}
	return false
}

// TextKind tells how a TextSpec is resolved.
type TextKind int

const (
	// TextMissing means the owner declared no text at all.
	TextMissing TextKind = iota
	// TextLiteral is returned verbatim regardless of language.
	TextLiteral
	// TextLocalized is looked up by the session language.
	TextLocalized
)

// TextSpec is the text of a screen or a button.
type TextSpec struct {
	Kind       TextKind
	Literal    string
	ByLanguage map[string]string

	// Prefix and Suffix decorate localized text. They live next to the
	// language entries in the document, not per language.
	Prefix *string
	Suffix *string
}

// Literal builds a literal TextSpec.
func Literal(s string) TextSpec {
	return TextSpec{Kind: TextLiteral, Literal: s}
}

// Localized builds a per-language TextSpec without decoration.
func Localized(byLanguage map[string]string) TextSpec {
	return TextSpec{Kind: TextLocalized, ByLanguage: byLanguage}
}

// Button is a selectable choice on a screen.
type Button struct {
	// Target is the button key: the default destination screen.
	Target string
	Text   TextSpec

	// Language, when set, becomes the session language once the button is pressed.
	Language string

	// Exits, when non-empty, replaces Target with a uniformly drawn entry.
	Exits []string
}

// ButtonLayout keeps the row/flat duality of the document.
// A flat layout is stored as a single row with Grouped == false.
type ButtonLayout struct {
	Rows    [][]Button
	Grouped bool

	// Declared is false when the screen has no buttons entry at all.
	Declared bool
}

// Each calls fn for every button in document order. Iteration stops when fn returns false.
func (l ButtonLayout) Each(fn func(Button) bool) {
	for _, row := range l.Rows {
		for _, b := range row {
			if !fn(b) {
				return
			}
		}
	}
}

// Len counts the buttons across all rows.
func (l ButtonLayout) Len() int {
	n := 0
	for _, row := range l.Rows {
		n += len(row)
	}
	return n
}

// FlatButtons builds an ungrouped layout.
func FlatButtons(buttons ...Button) ButtonLayout {
	return ButtonLayout{Rows: [][]Button{buttons}, Declared: true}
}

// GroupedButtons builds a layout from explicit rows.
func GroupedButtons(rows ...[]Button) ButtonLayout {
	return ButtonLayout{Rows: rows, Grouped: true, Declared: true}
}

// Screen represents a node in the quest graph.
type Screen struct {
	ID      string
	Text    TextSpec
	Buttons ButtonLayout

	// Quest resets the session sandbox when the screen is entered.
	Quest bool

	// Variables are merged into the session variable types on entry.
	Variables map[string]TypeTag

	// Script runs against the session sandbox on entry when HasScript is set.
	Script    string
	HasScript bool
}

// QuestDocument is the immutable screen graph.
type QuestDocument struct {
	InitialScreen string
	Screens       map[string]*Screen

	// Order lists screen ids as they appear in the source document.
	Order []string
}

// Screen returns the screen with the given id, or nil.
func (d *QuestDocument) Screen(id string) *Screen {
	if d == nil {
		return nil
	}
	return d.Screens[id]
}
