package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewRunner(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		userName   string
		wantID     string
		wantName   string
		wantAvatar string
	}{
		{"account", "8v5pe3xk", "Mitchflowerpower", "8v5pe3xk", "mitchflowerpower", "https://www.speedrun.com/themes/user/Mitchflowerpower/image.png"},
		{"guest", "guest", "SomeGuest", "someguest", "someguest", ""},
		{"guest upper case", "Guest", "Bob", "bob", "bob", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(tt.id, tt.userName)
			if r.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", r.ID, tt.wantID)
			}
			if r.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", r.Name, tt.wantName)
			}
			if tt.wantAvatar == "" {
				if r.AvatarURL != nil || !r.IsGuest() {
					t.Errorf("guest runner should have no avatar, got %v", r.AvatarURL)
				}
			} else if r.AvatarURL == nil || *r.AvatarURL != tt.wantAvatar {
				t.Errorf("AvatarURL = %v, want %q", r.AvatarURL, tt.wantAvatar)
			}
		})
	}
}

func TestConstructorsStartAtZero(t *testing.T) {
	r := NewRunner("abc", "Runner")
	if r.NumSubmittedRuns != 0 || r.NumSubmittedWRs != 0 || r.TotalTimeOverall != 0 {
		t.Errorf("runner counters not zero: %+v", r)
	}
	if r.HistoricRuns == nil || len(r.HistoricRuns) != 0 {
		t.Errorf("runner historic runs should be an empty map, got %v", r.HistoricRuns)
	}

	c := NewCategory("cat", "Any%", "rules")
	if c.CurrentWRTime != 0 || c.LongestHeldWRTime != 0 || c.NumberSubmittedRuns != 0 || c.NumberSubmittedWRs != 0 {
		t.Errorf("category counters not zero: %+v", c)
	}
	if c.Subcategories == nil {
		t.Error("category subcategories should be non-nil")
	}

	g := NewRunnerGame("g", "Game")
	if g.NumPreviousWRs != 0 || g.NumSubmittedRuns != 0 || g.TotalTimeOverall != 0 || g.Categories == nil {
		t.Errorf("runner game not initialized: %+v", g)
	}

	rc := NewRunnerCategory("c", "Cat")
	if rc.CurrentPBTime != 0 || rc.NumPreviousWRs != 0 || rc.Milestones == nil {
		t.Errorf("runner category not initialized: %+v", rc)
	}
}

func TestRunnerHistoricRunsRoundTrip(t *testing.T) {
	r := NewRunner("runner1", "Runner")
	for _, gameID := range []string{"game-a", "game-b"} {
		g := NewRunnerGame(gameID, "Game "+gameID)
		g.NumSubmittedRuns = 4
		for _, catID := range []string{"any", "100"} {
			c := NewRunnerCategory(catID, "Category "+catID)
			c.CurrentPBID = "pb-" + gameID + "-" + catID
			c.CurrentPBTime = 3725
			if err := c.Milestones.Set("sub_hour", true); err != nil {
				t.Fatal(err)
			}
			if err := c.Milestones.Set("splits", map[string]any{"first": 12, "labels": []string{"a", "b"}}); err != nil {
				t.Fatal(err)
			}
			g.Categories[catID] = c
		}
		r.HistoricRuns[gameID] = g
	}

	data, err := json.Marshal(r.HistoricRuns)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]*RunnerGame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(r.HistoricRuns, got) {
		t.Fatalf("historic runs changed in round trip:\nwant %+v\ngot  %+v", r.HistoricRuns, got)
	}
}
