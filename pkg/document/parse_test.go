package document_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tgquest/internal/testutils"
	"github.com/aretw0/tgquest/pkg/document"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questYAML = `
initial_screen: lang
screens:
  lang:
    text: "Choose language / Выберите язык"
    buttons:
      rows:
        - - intro: { text: English, language: en }
          - intro: { text: Русский, language: ru }
  intro:
    quest: true
    variables:
      gold: int
      name: string
    script: |
      gold = 10
      name = "Mech"
    text:
      en: "Hello, {name}! You have {gold} gold."
      ru: "Привет, {name}! У тебя {gold} золота."
      prefix: "<b>Intro</b>"
      suffix: " ⚙"
    buttons:
      fight: { text: { en: Fight, ru: Драться } }
      flee:
        text: { en: Flee, ru: Бежать }
        exits: [intro, lang]
  fight:
    text: "Boom"
    buttons:
      rows:
        first:
          intro: { text: Back }
        second:
          - lang: { text: Restart }
  flee:
    text: ~
    buttons:
      intro: ~
`

func TestParse_FullDocument(t *testing.T) {
	doc, err := document.Parse([]byte(questYAML))
	require.NoError(t, err)

	assert.Equal(t, "lang", doc.InitialScreen)
	assert.Equal(t, []string{"lang", "intro", "fight", "flee"}, doc.Order)

	lang := doc.Screen("lang")
	require.NotNil(t, lang)
	assert.Equal(t, domain.Literal("Choose language / Выберите язык"), lang.Text)
	require.True(t, lang.Buttons.Grouped)
	require.Len(t, lang.Buttons.Rows, 1)
	assert.Equal(t, []domain.Button{
		{Target: "intro", Text: domain.Literal("English"), Language: "en"},
		{Target: "intro", Text: domain.Literal("Русский"), Language: "ru"},
	}, lang.Buttons.Rows[0])

	intro := doc.Screen("intro")
	require.NotNil(t, intro)
	assert.True(t, intro.Quest)
	assert.True(t, intro.HasScript)
	assert.Contains(t, intro.Script, `name = "Mech"`)
	assert.Equal(t, map[string]domain.TypeTag{"gold": domain.TypeInt, "name": domain.TypeString}, intro.Variables)
	assert.Equal(t, domain.TextLocalized, intro.Text.Kind)
	assert.Equal(t, "Hello, {name}! You have {gold} gold.", intro.Text.ByLanguage["en"])
	assert.NotContains(t, intro.Text.ByLanguage, "prefix")
	require.NotNil(t, intro.Text.Prefix)
	require.NotNil(t, intro.Text.Suffix)
	assert.Equal(t, "<b>Intro</b>", *intro.Text.Prefix)
	assert.Equal(t, " ⚙", *intro.Text.Suffix)

	assert.False(t, intro.Buttons.Grouped)
	require.Len(t, intro.Buttons.Rows, 1)
	flee := intro.Buttons.Rows[0][1]
	assert.Equal(t, "flee", flee.Target)
	assert.Equal(t, []string{"intro", "lang"}, flee.Exits)

	fight := doc.Screen("fight")
	require.Len(t, fight.Buttons.Rows, 2, "named rows keep their order")
	assert.Equal(t, "intro", fight.Buttons.Rows[0][0].Target)
	assert.Equal(t, "lang", fight.Buttons.Rows[1][0].Target)

	fl := doc.Screen("flee")
	assert.Equal(t, domain.TextMissing, fl.Text.Kind)
	assert.True(t, fl.Buttons.Declared)
	assert.Equal(t, [][]domain.Button{{{Target: "intro"}}}, fl.Buttons.Rows)
	assert.False(t, fl.HasScript)
}

func TestParse_ReportsEveryDefect(t *testing.T) {
	src := `
initial_screen: nowhere
screens:
  start:
    quest: maybe
    text: [a, b]
    variables: { hp: bool }
    buttons:
      end: { exits: [] }
      start: { exits: oops }
  end:
    text: bye
`
	_, err := document.Parse([]byte(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	var cfg *domain.ConfigErrors
	require.True(t, errors.As(err, &cfg))

	msg := err.Error()
	for _, want := range []string{
		`screen "start": quest: must be a boolean (line 5)`,
		`screen "start": text: must be a string or a mapping of language to string (line 6)`,
		`initial_screen: references unknown screen "nowhere"`,
		`screen "start": variables.hp: unknown type "bool"`,
		`screen "end": buttons: is required`,
	} {
		assert.Contains(t, msg, want)
	}
	assert.Len(t, cfg.Errors, 5)
	assert.NotContains(t, msg, "exits")
}

func TestParse_ExitsFallBackToKey(t *testing.T) {
	src := `
initial_screen: a
screens:
  a:
    text: A
    buttons:
      b: { text: Empty, exits: [] }
      c: { text: Scalar, exits: c }
      a: { text: Mapping, exits: { x: y } }
  b:
    text: B
    buttons:
      a: { text: Back }
  c:
    text: C
    buttons:
      a: { text: Back }
`
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)

	row := doc.Screen("a").Buttons.Rows[0]
	require.Len(t, row, 3)
	for _, b := range row {
		assert.Empty(t, b.Exits, b.Target)
	}
	assert.Equal(t, "b", row[0].Target)
	assert.Equal(t, "c", row[1].Target)
}

func TestParse_EmptyExitsStillCheckTheKey(t *testing.T) {
	_, err := document.Parse([]byte(`
initial_screen: a
screens:
  a:
    text: A
    buttons:
      nowhere: { text: Go, exits: [] }
`))
	require.Error(t, err)
	assert.ErrorContains(t, err, `screen "a": buttons.nowhere: references unknown screen "nowhere"`)
}

func TestParse_NotAMapping(t *testing.T) {
	_, err := document.Parse([]byte("- just\n- a list\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.ErrorContains(t, err, "document must be a mapping")
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := document.Parse([]byte("screens: [unclosed"))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestParse_Aliases(t *testing.T) {
	src := `
initial_screen: a
screens:
  a:
    text: A
    buttons: &back
      a: { text: Back }
  b:
    text: B
    buttons: *back
`
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, doc.Screen("a").Buttons, doc.Screen("b").Buttons)
}

func TestLoadFile(t *testing.T) {
	path := testutils.WriteFile(t, "quests.yaml", questYAML)

	doc, err := document.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Screens, 4)

	_, err = document.LoadFile(filepath.Join(filepath.Dir(path), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
