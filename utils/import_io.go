package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"run-tracker/model"
)

// LoadGameFile reads a tracked game aggregate from a JSON file. Categories and
// moderators are keyed by their own IDs.
func LoadGameFile(path string) (*model.TrackedGame, error) {
	var game model.TrackedGame
	if err := readJSONFile(path, &game); err != nil {
		return nil, err
	}
	if game.Categories == nil {
		game.Categories = make(map[string]*model.Category)
	}
	if game.Moderators == nil {
		game.Moderators = make(map[string]*model.Moderator)
	}
	return &game, nil
}

// LoadRunnersFile reads a JSON array of runners and returns them keyed by ID.
func LoadRunnersFile(path string) (map[string]*model.Runner, error) {
	var runners []*model.Runner
	if err := readJSONFile(path, &runners); err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Runner, len(runners))
	for _, r := range runners {
		if r == nil || r.ID == "" {
			return nil, fmt.Errorf("runner without user_id in %s", path)
		}
		if r.HistoricRuns == nil {
			r.HistoricRuns = make(map[string]*model.RunnerGame)
		}
		byID[r.ID] = r
	}
	return byID, nil
}

// WriteJSON writes v to path, indented.
func WriteJSON(path string, v any) error {
	data, err := model.EncodeJSONIndent(v, "  ")
	if err != nil {
		return fmt.Errorf("error marshalling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error unmarshalling %s: %w", path, err)
	}
	return nil
}
