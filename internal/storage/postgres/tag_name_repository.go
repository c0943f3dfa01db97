package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TagNameRepository struct {
	db conn
}

func NewTagNameRepository(pool *pgxpool.Pool) *TagNameRepository {
	return &TagNameRepository{db: conn{pool: pool}}
}

func (r *TagNameRepository) ListTagNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.query(ctx, `SELECT id, name FROM rfid_names`)
	if err != nil {
		return nil, fmt.Errorf("list tag names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names[id] = name
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tag names: %w", rows.Err())
	}
	return names, nil
}

func (r *TagNameRepository) SetTagName(ctx context.Context, tagID, name string) error {
	const stmt = `
INSERT INTO rfid_names (id, name)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`
	if _, err := r.db.exec(ctx, stmt, tagID, name); err != nil {
		return fmt.Errorf("set tag name: %w", err)
	}
	return nil
}
