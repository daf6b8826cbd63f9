package document

import (
	"fmt"
	"os"

	"github.com/aretw0/tgquest/internal/validator"
	"github.com/aretw0/tgquest/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the quest document at path.
func LoadFile(path string) (*domain.QuestDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quest document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a validated document from YAML bytes.
func Parse(data []byte) (*domain.QuestDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	p := &parser{}
	doc := p.document(&root)

	if err := validator.Validate(doc); err != nil {
		if cfg, ok := err.(*domain.ConfigErrors); ok {
			p.errs = append(p.errs, cfg.Errors...)
		}
	}
	if len(p.errs) > 0 {
		return nil, &domain.ConfigErrors{Errors: p.errs}
	}
	return doc, nil
}

type parser struct {
	errs []*domain.ConfigError
}

func (p *parser) fail(screen, path string, n *yaml.Node, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	if n != nil && n.Line > 0 {
		reason = fmt.Sprintf("%s (line %d)", reason, n.Line)
	}
	p.errs = append(p.errs, &domain.ConfigError{Screen: screen, Path: path, Reason: reason})
}

func (p *parser) document(root *yaml.Node) *domain.QuestDocument {
	doc := &domain.QuestDocument{Screens: make(map[string]*domain.Screen)}

	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		p.fail("", "", n, "document must be a mapping")
		return doc
	}

	for key, val := range pairs(n) {
		switch key.Value {
		case "initial_screen":
			if s, ok := p.scalar("", "initial_screen", val); ok {
				doc.InitialScreen = s
			}
		case "screens":
			p.screens(doc, val)
		}
	}
	return doc
}

func (p *parser) screens(doc *domain.QuestDocument, n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		p.fail("", "screens", n, "must be a mapping of screen id to screen")
		return
	}
	for key, val := range pairs(n) {
		id := key.Value
		if _, dup := doc.Screens[id]; dup {
			p.fail(id, "", key, "duplicate screen id")
			continue
		}
		doc.Screens[id] = p.screen(id, val)
		doc.Order = append(doc.Order, id)
	}
}

func (p *parser) screen(id string, n *yaml.Node) *domain.Screen {
	s := &domain.Screen{ID: id}
	if n.Kind != yaml.MappingNode {
		p.fail(id, "", n, "screen must be a mapping")
		return s
	}

	for key, val := range pairs(n) {
		switch key.Value {
		case "text":
			s.Text = p.text(id, "text", val)
		case "quest":
			if err := val.Decode(&s.Quest); err != nil {
				p.fail(id, "quest", val, "must be a boolean")
			}
		case "variables":
			s.Variables = p.variables(id, val)
		case "script":
			if src, ok := p.scalar(id, "script", val); ok {
				s.Script = src
				s.HasScript = true
			}
		case "buttons":
			s.Buttons = p.buttons(id, val)
		}
	}
	return s
}

func (p *parser) text(screen, path string, n *yaml.Node) domain.TextSpec {
	switch {
	case isNull(n):
		return domain.TextSpec{}
	case n.Kind == yaml.ScalarNode:
		return domain.Literal(n.Value)
	case n.Kind != yaml.MappingNode:
		p.fail(screen, path, n, "must be a string or a mapping of language to string")
		return domain.TextSpec{}
	}

	spec := domain.TextSpec{Kind: domain.TextLocalized, ByLanguage: make(map[string]string)}
	for key, val := range pairs(n) {
		v, ok := p.scalar(screen, path+"."+key.Value, val)
		if !ok {
			continue
		}
		switch key.Value {
		case "prefix":
			spec.Prefix = &v
		case "suffix":
			spec.Suffix = &v
		default:
			spec.ByLanguage[key.Value] = v
		}
	}
	return spec
}

func (p *parser) variables(screen string, n *yaml.Node) map[string]domain.TypeTag {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		p.fail(screen, "variables", n, "must be a mapping of name to type")
		return nil
	}
	vars := make(map[string]domain.TypeTag, len(n.Content)/2)
	for key, val := range pairs(n) {
		if tag, ok := p.scalar(screen, "variables."+key.Value, val); ok {
			vars[key.Value] = domain.TypeTag(tag)
		}
	}
	return vars
}

func (p *parser) buttons(screen string, n *yaml.Node) domain.ButtonLayout {
	if isNull(n) {
		return domain.ButtonLayout{Declared: true}
	}
	if n.Kind == yaml.MappingNode {
		if rows := lookup(n, "rows"); rows != nil {
			return p.rows(screen, rows)
		}
	}
	return domain.FlatButtons(p.buttonSet(screen, "buttons", n)...)
}

func (p *parser) rows(screen string, n *yaml.Node) domain.ButtonLayout {
	layout := domain.ButtonLayout{Grouped: true, Declared: true}
	add := func(i int, row *yaml.Node) {
		layout.Rows = append(layout.Rows, p.buttonSet(screen, fmt.Sprintf("buttons.rows[%d]", i), row))
	}

	switch n.Kind {
	case yaml.SequenceNode:
		for i, row := range n.Content {
			add(i, row)
		}
	case yaml.MappingNode:
		// Named rows: the names only order the rows.
		i := 0
		for _, row := range pairs(n) {
			add(i, row)
			i++
		}
	default:
		if !isNull(n) {
			p.fail(screen, "buttons.rows", n, "must be a sequence or a mapping of rows")
		}
	}
	return layout
}

// buttonSet reads `id: def` entries from a mapping or from a sequence of mappings.
func (p *parser) buttonSet(screen, path string, n *yaml.Node) []domain.Button {
	var out []domain.Button
	switch {
	case isNull(n):
	case n.Kind == yaml.MappingNode:
		for key, val := range pairs(n) {
			out = append(out, p.button(screen, path+"."+key.Value, key.Value, val))
		}
	case n.Kind == yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.MappingNode {
				p.fail(screen, path, item, "button entries must be mappings of id to button")
				continue
			}
			for key, val := range pairs(item) {
				out = append(out, p.button(screen, path+"."+key.Value, key.Value, val))
			}
		}
	default:
		p.fail(screen, path, n, "must be a mapping or a sequence of buttons")
	}
	return out
}

func (p *parser) button(screen, path, key string, n *yaml.Node) domain.Button {
	b := domain.Button{Target: key}
	if isNull(n) {
		return b
	}
	if n.Kind != yaml.MappingNode {
		p.fail(screen, path, n, "button must be a mapping")
		return b
	}

	for k, val := range pairs(n) {
		switch k.Value {
		case "text":
			b.Text = p.text(screen, path+".text", val)
		case "language":
			if lang, ok := p.scalar(screen, path+".language", val); ok {
				b.Language = lang
			}
		case "exits":
			b.Exits = p.exits(screen, path+".exits", val)
		}
	}
	return b
}

// exits reads a random exit list. Anything but a non-empty sequence means
// no exits, so the button falls back to its own key.
func (p *parser) exits(screen, path string, n *yaml.Node) []string {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil
	}
	exits := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		if id, ok := p.scalar(screen, fmt.Sprintf("%s[%d]", path, i), item); ok {
			exits = append(exits, id)
		}
	}
	return exits
}

func (p *parser) scalar(screen, path string, n *yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode || isNull(n) {
		p.fail(screen, path, n, "must be a string")
		return "", false
	}
	return n.Value, true
}
