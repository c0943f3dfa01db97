package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// ZoneRepository stores zones with the reader timeout as fractional seconds.
type ZoneRepository struct {
	pool *pgxpool.Pool
	db   conn
}

func NewZoneRepository(pool *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{pool: pool, db: conn{pool: pool}}
}

func (r *ZoneRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const zoneColumns = `id::text, name, reader_ip, reader_port, timeout, mapped_zone_id::text, simulation_mode, created_at, updated_at`

func scanZone(row pgx.Row) (domain.Zone, error) {
	var (
		z       domain.Zone
		timeout float64
		mapped  *string
	)
	if err := row.Scan(&z.ID, &z.Name, &z.ReaderAddress, &z.ReaderPort, &timeout, &mapped, &z.SimulationMode, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return domain.Zone{}, err
	}
	z.MissingTimeout = time.Duration(timeout * float64(time.Second))
	z.MappedZoneID = mapped
	z.CreatedAt = z.CreatedAt.UTC()
	z.UpdatedAt = z.UpdatedAt.UTC()
	return z, nil
}

func (r *ZoneRepository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	const query = `
SELECT ` + zoneColumns + `
FROM zones
ORDER BY created_at ASC, id ASC`
	rows, err := r.db.query(ctx, query)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate zones: %w", rows.Err())
	}
	return zones, nil
}

func (r *ZoneRepository) GetZone(ctx context.Context, id string) (domain.Zone, error) {
	const query = `
SELECT ` + zoneColumns + `
FROM zones
WHERE id = $1`
	z, err := scanZone(r.db.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.Zone{}, domain.ErrZoneNotFound
		}
		return domain.Zone{}, fmt.Errorf("get zone: %w", err)
	}
	return z, nil
}

func (r *ZoneRepository) CreateZone(ctx context.Context, zone domain.Zone) error {
	const stmt = `
INSERT INTO zones (id, name, reader_ip, reader_port, timeout, mapped_zone_id, simulation_mode, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.exec(ctx, stmt,
		zone.ID, zone.Name, zone.ReaderAddress, zone.ReaderPort, zone.MissingTimeout.Seconds(),
		zone.MappedZoneID, zone.SimulationMode, zone.CreatedAt.UTC(), zone.UpdatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrMappedZoneAbsent
		}
		if isUniqueViolation(err) {
			return domain.Validation("id", fmt.Sprintf("zone %s already exists", zone.ID))
		}
		if isInvalidUUID(err) {
			return domain.Validation("id", "must be a UUID")
		}
		return fmt.Errorf("create zone: %w", err)
	}
	return nil
}

func (r *ZoneRepository) UpdateZone(ctx context.Context, zone domain.Zone) error {
	const stmt = `
UPDATE zones
SET name = $2, reader_ip = $3, reader_port = $4, timeout = $5, mapped_zone_id = $6,
	simulation_mode = $7, updated_at = $8
WHERE id = $1`
	tag, err := r.db.exec(ctx, stmt,
		zone.ID, zone.Name, zone.ReaderAddress, zone.ReaderPort, zone.MissingTimeout.Seconds(),
		zone.MappedZoneID, zone.SimulationMode, zone.UpdatedAt.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrMappedZoneAbsent
		}
		if isInvalidUUID(err) {
			return domain.ErrZoneNotFound
		}
		return fmt.Errorf("update zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}

func (r *ZoneRepository) DeleteZone(ctx context.Context, id string) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		const clear = `UPDATE zones SET mapped_zone_id = NULL WHERE mapped_zone_id = $1`
		if _, err := r.db.exec(ctx, clear, id); err != nil {
			if isInvalidUUID(err) {
				return domain.ErrZoneNotFound
			}
			return fmt.Errorf("clear zone references: %w", err)
		}
		tag, err := r.db.exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete zone: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrZoneNotFound
		}
		return nil
	})
}
