package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) ListTagNames(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM rfid_names`)
	if err != nil {
		return nil, fmt.Errorf("list tag names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var (
			id   string
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		if name.Valid && name.String != "" {
			names[id] = name.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tag names rows: %w", err)
	}
	return names, nil
}

func (s *Store) SetTagName(ctx context.Context, tagID, name string) error {
	const stmt = `
		INSERT INTO rfid_names (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`
	if _, err := s.db.ExecContext(ctx, stmt, tagID, name); err != nil {
		return fmt.Errorf("set tag name: %w", err)
	}
	return nil
}
