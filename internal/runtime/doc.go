/*
Package runtime is the per-session navigation and rendering core.

An Engine holds the immutable quest document and turns one inbound event into
one Reply: it resolves the pressed button to a target screen, runs the screen
entry sequence (sandbox reset, variable declaration, script) and renders the
text and the keyboard for the session language.

The Engine never locks. Callers hold the session exclusively (see
session.Registry.WithSession) for the whole call.
*/
package runtime
