package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/blocplan/blocplan/pkg/model"
)

// SectorRepository stores sectors, their rooms and their rules.
type SectorRepository struct {
	db              DB
	defaultMaxRooms int
}

// NewSectorRepository creates a sector repository. defaultMaxRooms is the
// configured supervision limit applied when a sector has no stored rule.
func NewSectorRepository(db DB, defaultMaxRooms int) *SectorRepository {
	if defaultMaxRooms < 1 {
		defaultMaxRooms = model.DefaultMaxRoomsPerSupervisor
	}
	return &SectorRepository{db: db, defaultMaxRooms: defaultMaxRooms}
}

// Create inserts a sector.
func (r *SectorRepository) Create(ctx context.Context, s *model.Sector) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO sectors (id, name, code, site, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.Code, s.Site, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create sector: %w", err)
	}
	return nil
}

// GetByID fetches a sector. Returns nil without error when missing so the
// caller can map it to its own not-found error.
func (r *SectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sector, error) {
	query := `
		SELECT id, name, code, site, created_at, updated_at
		FROM sectors
		WHERE id = $1 AND deleted_at IS NULL
	`
	var s model.Sector
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Code, &s.Site, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return &s, nil
}

// GetRule fetches the sector's rule, falling back to defaults when none is
// stored.
func (r *SectorRepository) GetRule(ctx context.Context, sectorID uuid.UUID) (*model.SectorRule, error) {
	query := `
		SELECT id, sector_id, max_rooms_per_supervisor, minimum_staff, required_specialties,
			created_at, updated_at
		FROM sector_rules
		WHERE sector_id = $1 AND deleted_at IS NULL
	`
	var rule model.SectorRule
	var specialties pq.StringArray
	err := r.db.QueryRowContext(ctx, query, sectorID).Scan(
		&rule.ID, &rule.SectorID, &rule.MaxRoomsPerSupervisor, &rule.MinimumStaff, &specialties,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaultRule(sectorID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sector rule: %w", err)
	}
	rule.RequiredSpecialties = specialties
	return &rule, nil
}

// defaultRule is the rule used for sectors without a stored one.
func (r *SectorRepository) defaultRule(sectorID uuid.UUID) *model.SectorRule {
	return &model.SectorRule{
		SectorID:              sectorID,
		MaxRoomsPerSupervisor: r.defaultMaxRooms,
	}
}

// UpsertRule writes the sector rule.
func (r *SectorRepository) UpsertRule(ctx context.Context, rule *model.SectorRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now()
	rule.UpdatedAt = now
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	query := `
		INSERT INTO sector_rules (
			id, sector_id, max_rooms_per_supervisor, minimum_staff, required_specialties,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sector_id) DO UPDATE SET
			max_rooms_per_supervisor = EXCLUDED.max_rooms_per_supervisor,
			minimum_staff = EXCLUDED.minimum_staff,
			required_specialties = EXCLUDED.required_specialties,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.SectorID, rule.MaxRoomsPerSupervisor, rule.MinimumStaff,
		pq.Array(rule.RequiredSpecialties), rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert sector rule: %w", err)
	}
	return nil
}

// ListRooms fetches the sector's rooms, name then ID ascending so slot
// enumeration is deterministic.
func (r *SectorRepository) ListRooms(ctx context.Context, sectorID uuid.UUID) ([]*model.Room, error) {
	query := `
		SELECT id, sector_id, name, required_specialty, created_at, updated_at
		FROM rooms
		WHERE sector_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sectorID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.SectorID, &room.Name, &room.RequiredSpecialty,
			&room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &room)
	}
	return out, rows.Err()
}

// CreateRoom inserts a room.
func (r *SectorRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	query := `
		INSERT INTO rooms (id, sector_id, name, required_specialty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.SectorID, room.Name, room.RequiredSpecialty, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}
