package runtime

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/session"
)

// RenderText resolves spec for the session language.
// Missing text and missing translations render as in-band diagnostics.
func (e *Engine) RenderText(sess *session.Session, spec domain.TextSpec) string {
	switch spec.Kind {
	case domain.TextLiteral:
		return spec.Literal
	case domain.TextLocalized:
		s, ok := spec.ByLanguage[sess.Language]
		if !ok {
			return fmt.Sprintf("error: no translation for language '%s' on screen '%s'", sess.Language, sess.CurrentScreen)
		}
		if spec.Prefix != nil {
			s = *spec.Prefix + " " + s
		}
		if spec.Suffix != nil {
			s += *spec.Suffix
		}
		return s
	}
	return "error: missing text"
}

// substitute fills {name} placeholders with the declared sandbox globals.
// Text is returned untouched when no declared variable is set.
func (e *Engine) substitute(sess *session.Session, text string) string {
	values := e.variables(sess)
	if len(values) == 0 {
		return text
	}

	out, err := Substitute(text, values)
	if err != nil {
		e.logger.Warn("Variable substitution failed", "user_id", sess.UserID, "screen", sess.CurrentScreen, "err", err)
		return text
	}
	return out
}

// variables reads every sandbox global that has a declared type.
func (e *Engine) variables(sess *session.Session) map[string]string {
	sb := sess.Sandbox()
	values := make(map[string]string)
	for _, name := range sb.Globals() {
		tag, ok := sess.VariableTypes[name]
		if !ok {
			continue
		}
		switch tag {
		case domain.TypeInt:
			values[name] = strconv.FormatInt(int64(sb.Number(name)), 10)
		case domain.TypeFloat:
			values[name] = formatFloat(sb.Number(name))
		case domain.TypeString:
			values[name] = sb.String(name)
		}
	}
	return values
}

// formatFloat prints the shortest representation that round-trips,
// switching to exponent notation only for very large or very small values.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
