package domain

// ParseModeHTML is the rich-text mode every reply is delivered with.
const ParseModeHTML = "HTML"

// Reply is the rendered result of an inbound event, handed to the message dispatcher.
type Reply struct {
	UserID   string     `json:"user_id"`
	ScreenID string     `json:"screen_id"`
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard"`

	ParseMode string `json:"parse_mode"`
}
