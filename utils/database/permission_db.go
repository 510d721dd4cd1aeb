package database

import (
	"context"
	"fmt"
	"run-tracker/model"
	"strconv"
)

type managerRow struct {
	UserID      string `db:"user_id"`
	AccessLevel int    `db:"access_level"`
}

func (row managerRow) toModel() (model.ManagerPermission, error) {
	id, err := strconv.ParseInt(row.UserID, 10, 64)
	if err != nil {
		return model.ManagerPermission{}, &RowError{Table: tableManagers, Key: row.UserID, Column: "user_id", Err: err}
	}
	return model.ManagerPermission{UserID: id, AccessLevel: row.AccessLevel}, nil
}

// InitPermissions pushes every stored permission into the cache, in user ID order. It
// stops at the first row it cannot read; rows pushed before that stay in the cache.
func (s *Store) InitPermissions(ctx context.Context, cache model.PermissionSetter) error {
	rows, err := s.db.QueryxContext(ctx, `SELECT user_id, access_level FROM managers ORDER BY user_id`)
	if err != nil {
		return s.report(classify(err, "load permissions"))
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var row managerRow
		if err := rows.StructScan(&row); err != nil {
			return s.report(fmt.Errorf("failed to scan permission row: %w", err))
		}
		p, err := row.toModel()
		if err != nil {
			return s.report(err)
		}
		cache.SetPermission(p.UserID, p.AccessLevel)
		count++
	}
	if err := rows.Err(); err != nil {
		return s.report(fmt.Errorf("failed to iterate permission rows: %w", err))
	}
	s.sink.LogEvent(fmt.Sprintf("Loaded %d manager permissions", count))
	return nil
}

// SetPermission grants userID the given access level, replacing any previous level.
func (s *Store) SetPermission(ctx context.Context, userID int64, level int) error {
	row := managerRow{UserID: strconv.FormatInt(userID, 10), AccessLevel: level}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO managers (user_id, access_level)
		VALUES (:user_id, :access_level)
		ON CONFLICT (user_id) DO UPDATE SET access_level = excluded.access_level`, row)
	return s.report(classify(err, "set permission for %d", userID))
}

// GetPermissions returns every permission row ordered by user ID.
func (s *Store) GetPermissions(ctx context.Context) ([]model.ManagerPermission, error) {
	var rows []managerRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT user_id, access_level FROM managers ORDER BY user_id`); err != nil {
		return nil, s.report(classify(err, "list permissions"))
	}
	perms := make([]model.ManagerPermission, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, s.report(err)
		}
		perms = append(perms, p)
	}
	return perms, nil
}
