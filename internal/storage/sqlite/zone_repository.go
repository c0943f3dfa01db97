package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

const zoneColumns = `id, name, reader_ip, reader_port, timeout, mapped_zone_id, simulation_mode, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (domain.Zone, error) {
	var (
		z       domain.Zone
		timeout float64
		mapped  sql.NullString
	)
	if err := row.Scan(&z.ID, &z.Name, &z.ReaderAddress, &z.ReaderPort, &timeout, &mapped, &z.SimulationMode, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return domain.Zone{}, err
	}
	z.MissingTimeout = time.Duration(timeout * float64(time.Second))
	if mapped.Valid && mapped.String != "" {
		id := mapped.String
		z.MappedZoneID = &id
	}
	z.CreatedAt = z.CreatedAt.UTC()
	z.UpdatedAt = z.UpdatedAt.UTC()
	return z, nil
}

func (s *Store) ListZones(ctx context.Context) ([]domain.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list zones rows: %w", err)
	}
	return zones, nil
}

func (s *Store) GetZone(ctx context.Context, id string) (domain.Zone, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = ?`, id)
	z, err := scanZone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Zone{}, domain.ErrZoneNotFound
		}
		return domain.Zone{}, fmt.Errorf("get zone: %w", err)
	}
	return z, nil
}

func (s *Store) CreateZone(ctx context.Context, zone domain.Zone) error {
	const stmt = `
		INSERT INTO zones (` + zoneColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, stmt,
		zone.ID, zone.Name, zone.ReaderAddress, zone.ReaderPort, zone.MissingTimeout.Seconds(),
		mappedValue(zone), zone.SimulationMode, zone.CreatedAt.UTC(), zone.UpdatedAt.UTC(),
	)
	if err != nil {
		switch constraint(err) {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return domain.Validation("id", fmt.Sprintf("zone %s already exists", zone.ID))
		case sqlite3.ErrConstraintForeignKey:
			return domain.ErrMappedZoneAbsent
		}
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

func (s *Store) UpdateZone(ctx context.Context, zone domain.Zone) error {
	const stmt = `
		UPDATE zones
		SET name = ?, reader_ip = ?, reader_port = ?, timeout = ?, mapped_zone_id = ?,
			simulation_mode = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, stmt,
		zone.Name, zone.ReaderAddress, zone.ReaderPort, zone.MissingTimeout.Seconds(), mappedValue(zone),
		zone.SimulationMode, zone.UpdatedAt.UTC(), zone.ID,
	)
	if err != nil {
		if constraint(err) == sqlite3.ErrConstraintForeignKey {
			return domain.ErrMappedZoneAbsent
		}
		return fmt.Errorf("update zone: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteZone(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE zones SET mapped_zone_id = NULL WHERE mapped_zone_id = ?`, id); err != nil {
			return fmt.Errorf("clear zone references: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete zone: %w", err)
		}
		return requireAffected(res)
	})
}

func mappedValue(zone domain.Zone) any {
	if zone.MappedZoneID == nil {
		return nil
	}
	return *zone.MappedZoneID
}

// constraint returns the extended code of a constraint failure, or zero.
func constraint(err error) sqlite3.ErrNoExtended {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return serr.ExtendedCode
	}
	return 0
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}
