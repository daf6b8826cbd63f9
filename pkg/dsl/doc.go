/*
Package dsl builds quest documents in Go instead of YAML.

Documents built here go through the same validation as parsed ones, which
makes the package handy for tests and for quests generated at runtime.

Example usage:

	b := dsl.New("start")

	b.Screen("start").
		Text("The door is locked.").
		Buttons(
			dsl.To("hall", "Knock"),
			dsl.To("start", "Pick the lock").Random("hall", "cell"),
		)

	b.Screen("hall").
		Localized(map[string]string{"en": "You are in.", "ru": "Вы внутри."}).
		Quest().
		Variable("gold", domain.TypeInt).
		Script("gold = 5").
		Buttons(dsl.To("start", "Again"))

	doc, err := b.Build()
	// ... pass doc to tgquest.New("", tgquest.WithDocument(doc))
*/
package dsl
