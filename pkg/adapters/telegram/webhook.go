package telegram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath derives a secret path from the bot token so the endpoint is not guessable.
func WebhookPath(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "/webhook/" + hex.EncodeToString(sum[:8])
}

// RegisterWebhook points Telegram at baseURL + path.
func RegisterWebhook(api API, baseURL, path string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook switches the bot back to long polling.
func DeleteWebhook(api API) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// WebhookHandler decodes one update per request and handles it before answering.
// Handling errors still answer 200 so Telegram does not redeliver.
func WebhookHandler(h *Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var upd tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			h.logger.Warn("Webhook: invalid update", "err", err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		h.HandleUpdate(context.WithoutCancel(r.Context()), upd)
		w.WriteHeader(http.StatusOK)
	})
}
