package model

import "time"

// TrackedGame is a game followed by the bot together with its categories and moderators.
// It is always read and written as one aggregate.
type TrackedGame struct {
	ID              string                `json:"game_id"`
	Name            string                `json:"game_name"`
	CoverURL        string                `json:"cover_url"`
	GameAlias       string                `json:"game_alias,omitempty"`
	AnnounceChannel int64                 `json:"announce_channel"`
	Categories      map[string]*Category  `json:"categories"`
	Moderators      map[string]*Moderator `json:"moderators"`
}

// NewTrackedGame returns a game with empty category and moderator maps.
func NewTrackedGame(id, name, coverURL string) *TrackedGame {
	return &TrackedGame{
		ID:         id,
		Name:       name,
		CoverURL:   coverURL,
		Categories: make(map[string]*Category),
		Moderators: make(map[string]*Moderator),
	}
}

// AddCategory stores c under its own ID.
func (g *TrackedGame) AddCategory(c *Category) {
	if g.Categories == nil {
		g.Categories = make(map[string]*Category)
	}
	g.Categories[c.ID] = c
}

// AddModerator stores m under its own ID.
func (g *TrackedGame) AddModerator(m *Moderator) {
	if g.Moderators == nil {
		g.Moderators = make(map[string]*Moderator)
	}
	g.Moderators[m.ID] = m
}

// Subcategories maps a variable ID to its values (value ID -> label).
type Subcategories map[string]map[string]string

// Category is a leaderboard of a tracked game. Its key is (game ID, category ID).
type Category struct {
	ID                  string        `json:"category_id"`
	Name                string        `json:"name"`
	Rules               string        `json:"rules"`
	Subcategories       Subcategories `json:"subcategories"`
	CurrentWRRunID      string        `json:"current_wr_run_id"`
	CurrentWRTime       int64         `json:"current_wr_time"`
	LongestHeldWRID     string        `json:"longest_held_wr_id"`
	LongestHeldWRTime   int64         `json:"longest_held_wr_time"`
	NumberSubmittedRuns int64         `json:"number_submitted_runs"`
	NumberSubmittedWRs  int64         `json:"number_submitted_wrs"`
}

// NewCategory returns a category with zeroed counters.
func NewCategory(id, name, rules string) *Category {
	return &Category{
		ID:            id,
		Name:          name,
		Rules:         rules,
		Subcategories: make(Subcategories),
	}
}

// Moderator is a speedrun.com moderator of a tracked game. Its key is (game ID, moderator ID).
type Moderator struct {
	ID                  string     `json:"src_id"`
	Name                string     `json:"src_name"`
	DiscordID           int64      `json:"discord_id"`
	ShouldNotify        bool       `json:"should_notify"`
	SecretKey           string     `json:"secret_key"`
	LastVerifiedRunDate *time.Time `json:"last_verified_run_date"`
	TotalVerifiedRuns   int64      `json:"total_verified_runs"`
	PastModerator       bool       `json:"past_moderator"`
}

// NewModerator returns a moderator that has never verified a run.
func NewModerator(id, name string) *Moderator {
	return &Moderator{
		ID:   id,
		Name: name,
	}
}
