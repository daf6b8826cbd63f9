package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks(nil)
	ctx := context.Background()

	enter := &domain.ScreenEvent{ScreenID: "hangar", Language: "en"}
	hooks.OnScreenEnter(ctx, enter)
	hooks.OnScreenEnter(ctx, enter)
	hooks.OnScreenLeave(ctx, enter)
	hooks.OnSandboxReset(ctx, enter)
	hooks.OnScriptError(ctx, &domain.ScriptEvent{ScreenID: "scout", Phase: "compile", Err: errors.New("x")})

	body := scrape(t, m)
	assert.Contains(t, body, `tgquest_screen_visits_total{language="en",screen="hangar"} 2`)
	assert.Contains(t, body, "tgquest_sandbox_resets_total 1")
	assert.Contains(t, body, `tgquest_script_errors_total{phase="compile",screen="scout"} 1`)
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.RegisterSessions(func() int { return 3 })
	m.ObserveUpdate("ok", 20*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, "tgquest_sessions 3")
	assert.Contains(t, body, `tgquest_updates_total{outcome="ok"} 1`)
	assert.Contains(t, body, "tgquest_update_duration_seconds_count 1")
}
