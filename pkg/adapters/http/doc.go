// Package http exposes the quest engine over HTTP: a small JSON API for
// driving sessions without Telegram, a per-user event stream, and mount
// points for the webhook and metrics handlers.
package http
