package telegram_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tgquest/pkg/adapters/telegram"
	"github.com/aretw0/tgquest/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	sendErrs []error
	batches  [][]tgbotapi.Update
	polls    atomic.Int32
	offsets  []int
	onDrain  func()
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.polls.Add(1)
	f.mu.Lock()
	f.offsets = append(f.offsets, cfg.Offset)
	if len(f.batches) == 0 {
		drain := f.onDrain
		f.mu.Unlock()
		if drain != nil {
			drain()
		}
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	f.mu.Unlock()
	return batch, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type echoEngine struct {
	mu   sync.Mutex
	seen map[string][]string
	err  error
}

func (e *echoEngine) Start(ctx context.Context, userID string) (*domain.Reply, error) {
	return e.Handle(ctx, userID, "/start")
}

func (e *echoEngine) Handle(_ context.Context, userID, text string) (*domain.Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	if e.seen == nil {
		e.seen = make(map[string][]string)
	}
	e.seen[userID] = append(e.seen[userID], text)
	if text == "/help" {
		return nil, nil
	}
	return &domain.Reply{
		UserID:    userID,
		ScreenID:  "echo",
		Text:      "<b>" + text + "</b>",
		Keyboard:  [][]string{{"Yes", "No"}},
		ParseMode: domain.ParseModeHTML,
	}, nil
}

func update(id int, from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: from},
			Chat: &tgbotapi.Chat{ID: from},
			Text: text,
		},
	}
}

func TestNewMessage_Keyboard(t *testing.T) {
	msg := telegram.NewMessage(42, &domain.Reply{
		Text:     "hi",
		Keyboard: [][]string{{"A", "B"}, {}, {"C"}},
	})
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)

	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, "B", kb.Keyboard[0][1].Text)
	assert.Equal(t, "C", kb.Keyboard[1][0].Text)
}

func TestNewMessage_RemovesKeyboard(t *testing.T) {
	msg := telegram.NewMessage(1, &domain.Reply{Text: "bye"})
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, kb.RemoveKeyboard)
}

func TestDispatcher_SendsToUser(t *testing.T) {
	api := &fakeAPI{}
	d := telegram.NewDispatcher(api)

	err := d.Dispatch(context.Background(), &domain.Reply{UserID: "77", Text: "hello"})
	require.NoError(t, err)

	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(77), sent[0].ChatID)
	assert.Equal(t, "hello", sent[0].Text)
}

func TestDispatcher_InvalidUserID(t *testing.T) {
	d := telegram.NewDispatcher(&fakeAPI{})
	err := d.Dispatch(context.Background(), &domain.Reply{UserID: "local"})
	assert.ErrorContains(t, err, "invalid telegram user id")
}

func TestDispatcher_ClientErrorIsNotRetried(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}}}
	d := telegram.NewDispatcher(api)

	err := d.Dispatch(context.Background(), &domain.Reply{UserID: "1", Text: "x"})
	var apiErr *tgbotapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
	assert.Empty(t, api.messages())
}

func TestDispatcher_RetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("connection reset")}}
	d := telegram.NewDispatcher(api, telegram.WithMaxRetries(2))

	err := d.Dispatch(context.Background(), &domain.Reply{UserID: "1", Text: "x"})
	require.NoError(t, err)
	assert.Len(t, api.messages(), 1)
}

func TestDispatcher_GivesUp(t *testing.T) {
	boom := errors.New("connection reset")
	api := &fakeAPI{sendErrs: []error{boom, boom}}
	d := telegram.NewDispatcher(api, telegram.WithMaxRetries(1))

	err := d.Dispatch(context.Background(), &domain.Reply{UserID: "1", Text: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestHandler_HandleUpdate(t *testing.T) {
	api := &fakeAPI{}
	engine := &echoEngine{}
	var outcomes []string
	h := telegram.NewHandler(engine, telegram.NewDispatcher(api),
		telegram.WithObserver(func(outcome string, _ time.Duration) {
			outcomes = append(outcomes, outcome)
		}),
	)

	ctx := context.Background()
	h.HandleUpdate(ctx, update(1, 5, "Play"))
	h.HandleUpdate(ctx, tgbotapi.Update{UpdateID: 2})
	h.HandleUpdate(ctx, update(3, 5, ""))
	h.HandleUpdate(ctx, update(4, 5, "/help"))
	h.HandleUpdate(ctx, update(5, 5, strings.Repeat("x", 10000)))

	assert.Equal(t, []string{
		telegram.OutcomeOK,
		telegram.OutcomeIgnored,
		telegram.OutcomeIgnored,
		telegram.OutcomeIgnored,
		telegram.OutcomeIgnored,
	}, outcomes)

	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(5), sent[0].ChatID)
	assert.Equal(t, "<b>Play</b>", sent[0].Text)
}

func TestHandler_EngineError(t *testing.T) {
	api := &fakeAPI{}
	var outcome string
	h := telegram.NewHandler(&echoEngine{err: domain.ErrInternal}, telegram.NewDispatcher(api),
		telegram.WithObserver(func(o string, _ time.Duration) { outcome = o }),
	)

	h.HandleUpdate(context.Background(), update(1, 9, "hi"))
	assert.Equal(t, telegram.OutcomeError, outcome)
	assert.Empty(t, api.messages())
}

func TestHandler_BatchKeepsPerUserOrder(t *testing.T) {
	api := &fakeAPI{}
	engine := &echoEngine{}
	h := telegram.NewHandler(engine, telegram.NewDispatcher(api), telegram.WithWorkers(4))

	var updates []tgbotapi.Update
	for i := range 20 {
		updates = append(updates, update(i, int64(i%3+1), string(rune('a'+i))))
	}
	h.HandleBatch(context.Background(), updates)

	assert.Len(t, api.messages(), 20)
	assert.Equal(t, []string{"a", "d", "g", "j", "m", "p", "s"}, engine.seen["1"])
	assert.Equal(t, []string{"b", "e", "h", "k", "n", "q", "t"}, engine.seen["2"])
	assert.Equal(t, []string{"c", "f", "i", "l", "o", "r"}, engine.seen["3"])
}

func TestPoller_AdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeAPI{
		batches: [][]tgbotapi.Update{
			{update(10, 1, "a"), update(11, 2, "b")},
			{update(12, 1, "c")},
		},
		onDrain: cancel,
	}
	h := telegram.NewHandler(&echoEngine{}, telegram.NewDispatcher(api))
	p := telegram.NewPoller(api, h, telegram.WithPollTimeout(0))

	require.NoError(t, p.Run(ctx))
	assert.Len(t, api.messages(), 3)
	assert.Equal(t, []int{0, 12, 13}, api.offsets[:3])
}

func TestWebhookPath_IsStable(t *testing.T) {
	a := telegram.WebhookPath("123:abc")
	assert.Equal(t, a, telegram.WebhookPath("123:abc"))
	assert.NotEqual(t, a, telegram.WebhookPath("123:abd"))
	assert.True(t, strings.HasPrefix(a, "/webhook/"))
	assert.NotContains(t, a, "abc")
}

func TestRegisterWebhook(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, telegram.RegisterWebhook(api, "https://bot.example.com/", "/webhook/x"))
	require.Len(t, api.requests, 1)

	wh, ok := api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "https://bot.example.com/webhook/x", wh.URL.String())
	assert.True(t, wh.DropPendingUpdates)
}

func TestWebhookHandler(t *testing.T) {
	api := &fakeAPI{}
	h := telegram.NewHandler(&echoEngine{}, telegram.NewDispatcher(api))
	srv := telegram.WebhookHandler(h)

	body := `{"update_id":1,"message":{"message_id":1,"date":0,"from":{"id":31,"is_bot":false,"first_name":"A"},"chat":{"id":31,"type":"private"},"text":"Go"}}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, api.messages(), 1)
	assert.Equal(t, int64(31), api.messages()[0].ChatID)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
