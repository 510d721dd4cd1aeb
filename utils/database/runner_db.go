package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"run-tracker/model"
	"slices"
	"strconv"
)

// runnerRow is one tracked_runners row. Counters are scanned as text and parsed so that
// a corrupt value surfaces as a RowError instead of a silent zero.
type runnerRow struct {
	UserID           string         `db:"user_id"`
	UserName         string         `db:"user_name"`
	AvatarURL        sql.NullString `db:"avatar_url"`
	HistoricRuns     sql.NullString `db:"historic_runs"`
	NumSubmittedWRs  sql.NullString `db:"num_submitted_wrs"`
	NumSubmittedRuns sql.NullString `db:"num_submitted_runs"`
	TotalTimeOverall sql.NullString `db:"total_time_overall"`
}

// runnerParams carries the typed values written back to tracked_runners.
type runnerParams struct {
	UserID           string         `db:"user_id"`
	UserName         string         `db:"user_name"`
	AvatarURL        sql.NullString `db:"avatar_url"`
	HistoricRuns     string         `db:"historic_runs"`
	NumSubmittedWRs  int64          `db:"num_submitted_wrs"`
	NumSubmittedRuns int64          `db:"num_submitted_runs"`
	TotalTimeOverall int64          `db:"total_time_overall"`
}

const (
	selectRunnerSQL = `SELECT user_id, user_name, avatar_url, historic_runs,
			num_submitted_wrs, num_submitted_runs, total_time_overall
		FROM tracked_runners`
	insertRunnerSQL = `INSERT INTO tracked_runners (user_id, user_name, avatar_url, historic_runs,
			num_submitted_wrs, num_submitted_runs, total_time_overall)
		VALUES (:user_id, :user_name, :avatar_url, :historic_runs,
			:num_submitted_wrs, :num_submitted_runs, :total_time_overall)`
	updateRunnerSQL = `UPDATE tracked_runners
		SET user_name = :user_name,
			avatar_url = :avatar_url,
			historic_runs = :historic_runs,
			num_submitted_wrs = :num_submitted_wrs,
			num_submitted_runs = :num_submitted_runs,
			total_time_overall = :total_time_overall
		WHERE user_id = :user_id`
)

func newRunnerParams(r *model.Runner) (runnerParams, error) {
	historic := r.HistoricRuns
	if historic == nil {
		historic = map[string]*model.RunnerGame{}
	}
	doc, err := model.EncodeJSON(historic)
	if err != nil {
		return runnerParams{}, fmt.Errorf("failed to encode historic runs of %q: %w", r.ID, err)
	}
	p := runnerParams{
		UserID:           r.ID,
		UserName:         r.Name,
		HistoricRuns:     string(doc),
		NumSubmittedWRs:  r.NumSubmittedWRs,
		NumSubmittedRuns: r.NumSubmittedRuns,
		TotalTimeOverall: r.TotalTimeOverall,
	}
	if r.AvatarURL != nil {
		p.AvatarURL = sql.NullString{String: *r.AvatarURL, Valid: true}
	}
	return p, nil
}

func (row runnerRow) toModel() (*model.Runner, error) {
	r := &model.Runner{
		ID:           row.UserID,
		Name:         row.UserName,
		HistoricRuns: make(map[string]*model.RunnerGame),
	}
	if row.AvatarURL.Valid {
		avatar := row.AvatarURL.String
		r.AvatarURL = &avatar
	}

	counters := []struct {
		column string
		value  sql.NullString
		dst    *int64
	}{
		{"num_submitted_wrs", row.NumSubmittedWRs, &r.NumSubmittedWRs},
		{"num_submitted_runs", row.NumSubmittedRuns, &r.NumSubmittedRuns},
		{"total_time_overall", row.TotalTimeOverall, &r.TotalTimeOverall},
	}
	for _, c := range counters {
		n, err := parseCounter(c.value)
		if err != nil {
			return nil, &RowError{Table: tableTrackedRunners, Key: row.UserID, Column: c.column, Err: err}
		}
		*c.dst = n
	}

	if row.HistoricRuns.Valid && row.HistoricRuns.String != "" {
		if err := json.Unmarshal([]byte(row.HistoricRuns.String), &r.HistoricRuns); err != nil {
			return nil, &RowError{Table: tableTrackedRunners, Key: row.UserID, Column: "historic_runs", Err: err}
		}
	}
	fillHistoricRuns(r)
	return r, nil
}

// fillHistoricRuns replaces nil maps left by "null" in the stored document.
func fillHistoricRuns(r *model.Runner) {
	if r.HistoricRuns == nil {
		r.HistoricRuns = make(map[string]*model.RunnerGame)
	}
	for id, g := range r.HistoricRuns {
		if g == nil {
			delete(r.HistoricRuns, id)
			continue
		}
		if g.Categories == nil {
			g.Categories = make(map[string]*model.RunnerCategory)
		}
		for cid, c := range g.Categories {
			if c == nil {
				delete(g.Categories, cid)
				continue
			}
			if c.Milestones == nil {
				c.Milestones = model.Milestones{}
			}
		}
	}
}

func parseCounter(ns sql.NullString) (int64, error) {
	if !ns.Valid {
		return 0, nil
	}
	return strconv.ParseInt(ns.String, 10, 64)
}

// GetCurrentRunner loads one runner with its historic runs.
func (s *Store) GetCurrentRunner(ctx context.Context, id string) (*model.Runner, error) {
	var row runnerRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(selectRunnerSQL+` WHERE user_id = ?`), id); err != nil {
		return nil, s.report(classify(err, "get runner %q", id))
	}
	r, err := row.toModel()
	if err != nil {
		return nil, s.report(err)
	}
	return r, nil
}

// GetCurrentRunners loads every runner keyed by ID. Rows that cannot be hydrated are
// left out of the map and returned as joined RowErrors next to the rows that loaded.
func (s *Store) GetCurrentRunners(ctx context.Context) (map[string]*model.Runner, error) {
	var rows []runnerRow
	if err := s.db.SelectContext(ctx, &rows, selectRunnerSQL+` ORDER BY user_id`); err != nil {
		return nil, s.report(classify(err, "list runners"))
	}

	runners := make(map[string]*model.Runner, len(rows))
	var errs []error
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			errs = append(errs, s.report(err))
			continue
		}
		runners[r.ID] = r
	}
	return runners, errors.Join(errs...)
}

// InsertNewRunner writes a new runner. An existing ID fails with ErrDuplicate.
func (s *Store) InsertNewRunner(ctx context.Context, r *model.Runner) error {
	p, err := newRunnerParams(r)
	if err != nil {
		return s.report(err)
	}
	_, err = s.db.NamedExecContext(ctx, insertRunnerSQL, p)
	return s.report(classify(err, "insert runner %q", r.ID))
}

// InsertNewRunners inserts each runner on its own. Runners that were written stay
// written when others fail.
func (s *Store) InsertNewRunners(ctx context.Context, runners map[string]*model.Runner) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(runners)) {
		if err := s.InsertNewRunner(ctx, runners[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateCurrentRunner overwrites a stored runner. The ID selects the row and is never
// changed.
func (s *Store) UpdateCurrentRunner(ctx context.Context, r *model.Runner) error {
	p, err := newRunnerParams(r)
	if err != nil {
		return s.report(err)
	}
	res, err := s.db.NamedExecContext(ctx, updateRunnerSQL, p)
	if err != nil {
		return s.report(classify(err, "update runner %q", r.ID))
	}
	return s.report(expectRow(res, "update runner %q", r.ID))
}

// UpdateCurrentRunners updates each runner on its own, with the same partial-success
// behaviour as InsertNewRunners.
func (s *Store) UpdateCurrentRunners(ctx context.Context, runners map[string]*model.Runner) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(runners)) {
		if err := s.UpdateCurrentRunner(ctx, runners[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
