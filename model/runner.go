package model

import (
	"fmt"
	"strings"
)

const guestID = "guest"

// Runner is a tracked speedrunner. HistoricRuns is keyed by game ID and is persisted
// as a single JSON document.
type Runner struct {
	ID               string                 `json:"user_id"`
	Name             string                 `json:"user_name"`
	AvatarURL        *string                `json:"avatar_url"`
	HistoricRuns     map[string]*RunnerGame `json:"historic_runs"`
	NumSubmittedWRs  int64                  `json:"num_submitted_wrs"`
	NumSubmittedRuns int64                  `json:"num_submitted_runs"`
	TotalTimeOverall int64                  `json:"total_time_overall"`
}

// NewRunner builds a runner from a speedrun.com user. Names are stored lower-cased.
// Guest runners (id "guest") have no account, so their lower-cased name becomes the ID
// and they get no avatar.
func NewRunner(id, name string) *Runner {
	r := &Runner{
		ID:           id,
		Name:         strings.ToLower(name),
		HistoricRuns: make(map[string]*RunnerGame),
	}
	if strings.EqualFold(id, guestID) {
		r.ID = r.Name
		return r
	}
	avatar := fmt.Sprintf("https://www.speedrun.com/themes/user/%s/image.png", name)
	r.AvatarURL = &avatar
	return r
}

// IsGuest reports whether the runner has no speedrun.com account.
func (r *Runner) IsGuest() bool {
	return r.AvatarURL == nil
}

// RunnerGame is a runner's history in one game.
type RunnerGame struct {
	ID               string                     `json:"src_id"`
	Name             string                     `json:"src_name"`
	NumPreviousWRs   int64                      `json:"num_previous_wrs"`
	NumSubmittedRuns int64                      `json:"num_submitted_runs"`
	TotalTimeOverall int64                      `json:"total_time_overall"`
	Categories       map[string]*RunnerCategory `json:"categories"`
}

func NewRunnerGame(id, name string) *RunnerGame {
	return &RunnerGame{
		ID:         id,
		Name:       name,
		Categories: make(map[string]*RunnerCategory),
	}
}

// RunnerCategory is a runner's history in one category of a game.
type RunnerCategory struct {
	ID               string     `json:"src_id"`
	Name             string     `json:"src_name"`
	CurrentPBID      string     `json:"current_pb_id"`
	CurrentPBTime    int64      `json:"current_pb_time"`
	NumPreviousWRs   int64      `json:"num_previous_wrs"`
	NumSubmittedRuns int64      `json:"num_submitted_runs"`
	TotalTimeOverall int64      `json:"total_time_overall"`
	Milestones       Milestones `json:"milestones"`
}

func NewRunnerCategory(id, name string) *RunnerCategory {
	return &RunnerCategory{
		ID:         id,
		Name:       name,
		Milestones: Milestones{},
	}
}
