package runtime

import (
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/session"
)

// Keyboard renders the button labels of screen, one slice per row.
// It walks the layout exactly like Resolve, so every label it shows resolves.
func (e *Engine) Keyboard(sess *session.Session, screen *domain.Screen) [][]string {
	rows := make([][]string, 0, len(screen.Buttons.Rows))
	for _, row := range screen.Buttons.Rows {
		labels := make([]string, 0, len(row))
		for _, b := range row {
			labels = append(labels, e.RenderText(sess, b.Text))
		}
		rows = append(rows, labels)
	}
	return rows
}
