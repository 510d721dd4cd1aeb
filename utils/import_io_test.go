package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"run-tracker/model"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGameFile(t *testing.T) {
	path := writeFile(t, "game.json", `{
		"game_id": "o1y9wo6q",
		"game_name": "Super Mario 64",
		"game_alias": "sm64",
		"announce_channel": 42,
		"categories": {
			"wkpoo02r": {"category_id": "wkpoo02r", "name": "120 Star", "number_submitted_runs": 3}
		}
	}`)

	game, err := LoadGameFile(path)
	if err != nil {
		t.Fatalf("LoadGameFile: %v", err)
	}
	if game.ID != "o1y9wo6q" || game.AnnounceChannel != 42 || game.GameAlias != "sm64" {
		t.Errorf("unexpected game: %+v", game)
	}
	if c := game.Categories["wkpoo02r"]; c == nil || c.NumberSubmittedRuns != 3 {
		t.Errorf("category not loaded: %+v", game.Categories)
	}
	if game.Moderators == nil {
		t.Error("missing moderators should load as an empty map")
	}

	if _, err := LoadGameFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRunnersFileRoundTrip(t *testing.T) {
	r := model.NewRunner("8v5pe3xk", "Runner")
	g := model.NewRunnerGame("o1y9wo6q", "Super Mario 64")
	c := model.NewRunnerCategory("wkpoo02r", "120 Star")
	if err := c.Milestones.Set("sub_100", true); err != nil {
		t.Fatal(err)
	}
	g.Categories[c.ID] = c
	r.HistoricRuns[g.ID] = g

	path := filepath.Join(t.TempDir(), "runners.json")
	if err := WriteJSON(path, []*model.Runner{r}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := LoadRunnersFile(path)
	if err != nil {
		t.Fatalf("LoadRunnersFile: %v", err)
	}
	if !reflect.DeepEqual(map[string]*model.Runner{r.ID: r}, got) {
		t.Errorf("runners changed in round trip: %+v", got)
	}

	bad := writeFile(t, "bad.json", `[{"user_name": "no id"}]`)
	if _, err := LoadRunnersFile(bad); err == nil {
		t.Error("expected an error for a runner without an ID")
	}
}
