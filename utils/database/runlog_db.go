package database

import (
	"context"
	"errors"
	"fmt"
)

// RunLogKind names a run log table.
type RunLogKind string

const (
	// RunLogNotifications records runs whose moderators were notified.
	RunLogNotifications RunLogKind = tableNotifications
	// RunLogAnnouncements records runs that were announced as world records.
	RunLogAnnouncements RunLogKind = tableAnnouncements
)

func (k RunLogKind) valid() bool {
	return k == RunLogNotifications || k == RunLogAnnouncements
}

// MarkRun records runID in the given log. It returns false without error when the run
// was already recorded, so each run is handled once.
func (s *Store) MarkRun(ctx context.Context, kind RunLogKind, runID string) (bool, error) {
	if !kind.valid() {
		return false, fmt.Errorf("unknown run log %q", kind)
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO `+string(kind)+` (run_id) VALUES (?)`), runID)
	if err != nil {
		err = classify(err, "mark run %q in %s", runID, kind)
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, s.report(err)
	}
	return true, nil
}

// HasRun reports whether runID is recorded in the given log.
func (s *Store) HasRun(ctx context.Context, kind RunLogKind, runID string) (bool, error) {
	if !kind.valid() {
		return false, fmt.Errorf("unknown run log %q", kind)
	}
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM ` + string(kind) + ` WHERE run_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, runID); err != nil {
		return false, s.report(classify(err, "check run %q in %s", runID, kind))
	}
	return n > 0, nil
}
