/*
Package telegram connects a quest engine to the Telegram Bot API.

Updates arrive either by long polling (Poller) or through a webhook
(WebhookHandler). Both feed a Handler, which passes the message text of each
user to the engine and hands the reply to a Dispatcher that sends it as an
HTML message with a resizable reply keyboard.

Updates of one user are handled in arrival order; different users are handled
concurrently up to the configured worker limit.
*/
package telegram
