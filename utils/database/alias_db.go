package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"run-tracker/model"
	"slices"
	"strings"
)

const insertAliasSQL = `INSERT INTO aliases (alias, type, id) VALUES (:alias, :type, :id)`

// ResolveAlias returns the ID an alias points at. When the same alias exists for both
// types, the game alias wins.
func (s *Store) ResolveAlias(ctx context.Context, alias string) (string, error) {
	var id string
	query := s.db.Rebind(`SELECT id FROM aliases WHERE alias = ? ORDER BY type DESC LIMIT 1`)
	if err := s.db.GetContext(ctx, &id, query, alias); err != nil {
		return "", s.report(classify(err, "resolve alias %q", alias))
	}
	return id, nil
}

// ResolveTypedAlias returns the ID an alias of the given type points at.
func (s *Store) ResolveTypedAlias(ctx context.Context, alias string, aliasType model.AliasType) (string, error) {
	var id string
	query := s.db.Rebind(`SELECT id FROM aliases WHERE alias = ? AND type = ?`)
	if err := s.db.GetContext(ctx, &id, query, alias, string(aliasType)); err != nil {
		return "", s.report(classify(err, "resolve %s alias %q", aliasType, alias))
	}
	return id, nil
}

// InsertAlias binds alias to id. It fails with ErrDuplicate, leaving the table
// unchanged, when (alias, type) exists or when id already has an alias.
func (s *Store) InsertAlias(ctx context.Context, alias string, aliasType model.AliasType, id string) error {
	switch aliasType {
	case model.AliasGame, model.AliasCategory:
	default:
		return fmt.Errorf("unknown alias type %q", aliasType)
	}
	_, err := s.db.NamedExecContext(ctx, insertAliasSQL, model.Alias{Alias: alias, Type: aliasType, ID: id})
	return s.report(classify(err, "insert alias %q (%s -> %s)", alias, aliasType, id))
}

// InsertAliases inserts each alias independently. Failures do not stop the loop and
// successful inserts are kept; the returned error joins every failure.
func (s *Store) InsertAliases(ctx context.Context, aliases map[string]model.AliasTarget) error {
	var errs []error
	for _, alias := range slices.Sorted(maps.Keys(aliases)) {
		target := aliases[alias]
		if err := s.InsertAlias(ctx, alias, target.Type, target.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListAliases returns the aliases of one type, or of every type when aliasType is
// empty, ordered by alias.
func (s *Store) ListAliases(ctx context.Context, aliasType model.AliasType) ([]model.Alias, error) {
	aliases := []model.Alias{}
	var err error
	if aliasType == "" {
		err = s.db.SelectContext(ctx, &aliases, `SELECT alias, type, id FROM aliases ORDER BY alias, type`)
	} else {
		err = s.db.SelectContext(ctx, &aliases,
			s.db.Rebind(`SELECT alias, type, id FROM aliases WHERE type = ? ORDER BY alias`), string(aliasType))
	}
	if err != nil {
		return nil, s.report(classify(err, "list aliases"))
	}
	return aliases, nil
}

// CategoryAliasToGameID resolves the game that owns a category alias. Category aliases
// are named "<game alias>-<rest>", so the text before the first delimiter is resolved
// as an alias. The category alias itself must exist.
func (s *Store) CategoryAliasToGameID(ctx context.Context, categoryAlias string) (string, error) {
	if _, err := s.ResolveAlias(ctx, categoryAlias); err != nil {
		return "", err
	}
	gameAlias, _, found := strings.Cut(categoryAlias, model.CategoryAliasDelimiter)
	if !found || gameAlias == "" {
		return "", fmt.Errorf("category alias %q: %w", categoryAlias, ErrMalformedAlias)
	}
	return s.ResolveAlias(ctx, gameAlias)
}
