package domain

import "strings"

// DefaultLanguage is the language a new session starts with.
const DefaultLanguage = "ru"

// StartCommand resets the session to the initial screen.
const StartCommand = "start"

// CommandName returns the bot command carried by text ("/start@bot arg" -> "start").
// The second result is false when text is not a command.
func CommandName(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := text[1:]
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name, true
}
