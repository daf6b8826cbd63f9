package runtime

import (
	"fmt"
	"strings"
)

// SubstitutionError reports a malformed template or a placeholder without a value.
type SubstitutionError struct {
	Offset int
	Name   string
	Reason string
}

func (e *SubstitutionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("substitution failed at offset %d: %s %q", e.Offset, e.Reason, e.Name)
	}
	return fmt.Sprintf("substitution failed at offset %d: %s", e.Offset, e.Reason)
}

// Substitute formats a named-placeholder template.
//
// {name} is replaced by values[name], {name:spec} too (spec is ignored),
// {{ and }} produce literal braces. Anything else is a *SubstitutionError.
func Substitute(tmpl string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &SubstitutionError{Offset: i, Reason: "unterminated placeholder"}
			}
			field := tmpl[i+1 : i+1+end]
			name, _, _ := strings.Cut(field, ":")
			if name == "" {
				return "", &SubstitutionError{Offset: i, Reason: "empty placeholder name"}
			}
			v, ok := values[name]
			if !ok {
				return "", &SubstitutionError{Offset: i, Name: name, Reason: "no value for placeholder"}
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &SubstitutionError{Offset: i, Reason: "unmatched '}'"}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
