package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/tgquest/internal/testutils"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questsFile = "../../testdata/quests.yaml"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tgquest version ")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", questsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Quest is valid!")
}

func TestValidate_ReportsEveryError(t *testing.T) {
	path := testutils.WriteFile(t, "broken.yaml", `
initial_screen: start
screens:
  start:
    text: hi
    buttons:
      nowhere: { text: Go }
  other:
    text: lost
`)

	out, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
	assert.Contains(t, out, "nowhere")
	assert.Contains(t, out, "other")
}

func TestValidate_WarnsAboutUndeclaredLanguage(t *testing.T) {
	path := testutils.WriteFile(t, "lang.yaml", `
initial_screen: start
screens:
  start:
    text: { en: hi }
    buttons:
      start: { text: Klingon, language: english }
`)

	out, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `! screen "start": buttons.start.language: no text declares language "english"`)
	assert.Contains(t, out, "Quest is valid!")
}

func TestPlay_JSON(t *testing.T) {
	out, err := execute(t, "English\n", "play", "--json", "--quests", questsFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second domain.Reply
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "language", first.ScreenID)
	assert.Equal(t, "welcome", second.ScreenID)
	assert.True(t, strings.HasPrefix(second.Text, "⚙ The factory is silent."))
}

func TestRun_RequiresToken(t *testing.T) {
	t.Setenv("TGQUEST_BOT_TOKEN", "")
	_, err := execute(t, "", "run", "--quests", questsFile)
	assert.ErrorContains(t, err, "bot_token is required")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "", "graph", questsFile, "--lang", "en", "--current", "hangar")
	require.NoError(t, err)
	assert.Contains(t, out, `language(("language"))`)
	assert.Contains(t, out, `language -- "English" --> welcome`)
	assert.Contains(t, out, "class hangar current;")
}
