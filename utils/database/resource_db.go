package database

import (
	"context"
	"run-tracker/model"
)

// InsertResource stores content under (gameAlias, name). The game alias must already
// resolve to a game. Existing resources are never overwritten; a second insert under
// the same key fails with ErrDuplicate.
func (s *Store) InsertResource(ctx context.Context, gameAlias, name, content string) error {
	if _, err := s.ResolveTypedAlias(ctx, gameAlias, model.AliasGame); err != nil {
		return err
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO resources (resource, game_alias, content) VALUES (:resource, :game_alias, :content)`,
		model.Resource{Name: name, GameAlias: gameAlias, Content: content})
	if err != nil {
		return s.report(classify(err, "insert resource %q for %q", name, gameAlias))
	}
	s.sink.LogEvent("Added resource " + name + " to " + gameAlias)
	return nil
}

// GetResource returns one resource.
func (s *Store) GetResource(ctx context.Context, gameAlias, name string) (*model.Resource, error) {
	var res model.Resource
	query := s.db.Rebind(`SELECT resource, game_alias, content FROM resources WHERE game_alias = ? AND resource = ?`)
	if err := s.db.GetContext(ctx, &res, query, gameAlias, name); err != nil {
		return nil, s.report(classify(err, "get resource %q for %q", name, gameAlias))
	}
	return &res, nil
}

// ListResources returns the resources of one game alias ordered by name.
func (s *Store) ListResources(ctx context.Context, gameAlias string) ([]model.Resource, error) {
	resources := []model.Resource{}
	query := s.db.Rebind(`SELECT resource, game_alias, content FROM resources WHERE game_alias = ? ORDER BY resource`)
	if err := s.db.SelectContext(ctx, &resources, query, gameAlias); err != nil {
		return nil, s.report(classify(err, "list resources for %q", gameAlias))
	}
	return resources, nil
}
