package runtime

import (
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/session"
)

// Resolve finds the button whose rendered label equals input on the current screen.
// The first match in document order wins. A matching button with a language
// override switches the session language even when its target is later discarded.
func (e *Engine) Resolve(sess *session.Session, input string) (string, bool) {
	screen := e.doc.Screen(sess.CurrentScreen)
	if screen == nil {
		return "", false
	}

	var target string
	var found bool
	screen.Buttons.Each(func(b domain.Button) bool {
		if e.RenderText(sess, b.Text) != input {
			return true
		}
		if b.Language != "" {
			sess.Language = b.Language
		}
		if len(b.Exits) > 0 {
			target = b.Exits[e.rng.Index(len(b.Exits))]
		} else {
			target = b.Target
		}
		found = true
		return false
	})
	return target, found
}
