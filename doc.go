/*
Package tgquest is an engine for branching text quests delivered through a chat.

A quest is a YAML document: a graph of screens, each with localized text, a keyboard
of buttons leading to other screens and an optional Lua script whose globals are
interpolated into the text. Every user walks the graph independently; their position,
language and script state live in an in-memory session.

# Usage

	eng, err := tgquest.New("./quests.yaml")
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	reply, err := eng.Handle(ctx, "42", "/start")
	if err != nil {
		log.Fatal(err)
	}
	if reply != nil {
		fmt.Println(reply.Text, reply.Keyboard)
	}

The engine is transport agnostic. pkg/adapters/telegram delivers replies to a
Telegram bot and pkg/adapters/http serves them over HTTP with an event stream.
pkg/adapters/mcp exposes the engine as MCP tools, and pkg/runner plays a quest
in the local terminal or over line-delimited JSON.

# Concurrency

Engine is safe for concurrent use. Events of different users run in parallel;
events of the same user are serialized.
*/
package tgquest
