package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/tgquest/internal/presentation/graph"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func fixture() *domain.QuestDocument {
	return &domain.QuestDocument{
		InitialScreen: "start",
		Order:         []string{"start", "camp-fire", "duel", "end"},
		Screens: map[string]*domain.Screen{
			"start": {ID: "start", Buttons: domain.FlatButtons(
				domain.Button{Target: "camp-fire", Text: domain.Localized(map[string]string{"ru": "К костру", "en": "To the \"fire\""})},
			)},
			"camp-fire": {ID: "camp-fire", Quest: true, Buttons: domain.FlatButtons(
				domain.Button{Target: "duel", Text: domain.Literal("Fight"), Exits: []string{"duel", "end"}},
			)},
			"duel": {ID: "duel", HasScript: true, Buttons: domain.ButtonLayout{Declared: true}},
			"end":  {ID: "end", Buttons: domain.ButtonLayout{Declared: true}},
		},
	}
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(fixture(), graph.Options{})

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `start(("start"))`)
	assert.Contains(t, out, `camp_fire[["camp-fire"]]`)
	assert.Contains(t, out, `duel[/"duel"/]`)
	assert.Contains(t, out, `end_["end"]`)
}

func TestGenerateMermaid_Edges(t *testing.T) {
	out := graph.GenerateMermaid(fixture(), graph.Options{})
	assert.Contains(t, out, `start -- "К костру" --> camp_fire`)
	assert.Contains(t, out, `camp_fire -. "🎲 Fight" .-> duel`)
	assert.Contains(t, out, `camp_fire -. "🎲 Fight" .-> end_`)

	out = graph.GenerateMermaid(fixture(), graph.Options{Language: "en"})
	assert.Contains(t, out, `start -- "To the 'fire'" --> camp_fire`)

	out = graph.GenerateMermaid(fixture(), graph.Options{Language: "de"})
	assert.Contains(t, out, `start -- "To the 'fire'" --> camp_fire`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(fixture(), graph.Options{Overlay: &graph.Overlay{
		Visited: []string{"start", "camp-fire", "start"},
		Current: "duel",
	}})

	assert.Equal(t, 1, strings.Count(out, "class start visited;"))
	assert.Contains(t, out, "class camp_fire visited;")
	assert.Contains(t, out, "class duel current;")
}
