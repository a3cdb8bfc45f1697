package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/blocplan/blocplan/pkg/model"
)

// StaffRepository stores staff members.
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a staff repository.
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a staff member.
func (r *StaffRepository) Create(ctx context.Context, s *model.StaffMember) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	patternJSON, _ := json.Marshal(s.WorkPattern)
	prefsJSON, _ := json.Marshal(s.Preferences)

	query := `
		INSERT INTO staff_members (
			id, name, role, specialty, sector_ids, status,
			work_pattern, preferences, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Role, s.Specialty, pq.Array(uuidStrings(s.SectorIDs)), s.Status,
		patternJSON, prefsJSON, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create staff member: %w", err)
	}

	return nil
}

// GetByID fetches a staff member.
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	query := `
		SELECT id, name, role, specialty, sector_ids, status,
			work_pattern, preferences, created_at, updated_at
		FROM staff_members
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanStaff(r.db.QueryRowContext(ctx, query, id))
}

// Update writes mutable fields.
func (r *StaffRepository) Update(ctx context.Context, s *model.StaffMember) error {
	s.UpdatedAt = time.Now()
	patternJSON, _ := json.Marshal(s.WorkPattern)
	prefsJSON, _ := json.Marshal(s.Preferences)

	query := `
		UPDATE staff_members
		SET name = $2, role = $3, specialty = $4, sector_ids = $5, status = $6,
			work_pattern = $7, preferences = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Role, s.Specialty, pq.Array(uuidStrings(s.SectorIDs)), s.Status,
		patternJSON, prefsJSON, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update staff member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete soft-deletes a staff member.
func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE staff_members SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("delete staff member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List fetches staff members by filter.
func (r *StaffRepository) List(ctx context.Context, filter ListFilter) ([]*model.StaffMember, int, error) {
	var conditions []string
	var args []interface{}
	argN := 1

	conditions = append(conditions, "deleted_at IS NULL")
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argN))
		args = append(args, filter.Status)
		argN++
	}
	if filter.SectorID != nil {
		conditions = append(conditions, fmt.Sprintf("(sector_ids = '{}' OR $%d = ANY(sector_ids))", argN))
		args = append(args, filter.SectorID.String())
		argN++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argN))
		args = append(args, "%"+filter.Search+"%")
		argN++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM staff_members WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count staff members: %w", err)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, name, role, specialty, sector_ids, status,
			work_pattern, preferences, created_at, updated_at
		FROM staff_members
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, orderDir, argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff members: %w", err)
	}
	defer rows.Close()

	var out []*model.StaffMember
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// ListActiveForSector fetches every active staff member eligible for the
// sector, staff ID ascending for deterministic runs.
func (r *StaffRepository) ListActiveForSector(ctx context.Context, sectorID uuid.UUID) ([]*model.StaffMember, error) {
	query := `
		SELECT id, name, role, specialty, sector_ids, status,
			work_pattern, preferences, created_at, updated_at
		FROM staff_members
		WHERE deleted_at IS NULL
			AND status = 'active'
			AND (sector_ids = '{}' OR $1 = ANY(sector_ids))
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sectorID.String())
	if err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	defer rows.Close()

	var out []*model.StaffMember
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StaffRepository) scanStaff(row Scanner) (*model.StaffMember, error) {
	var s model.StaffMember
	var sectorIDs pq.StringArray
	var patternJSON, prefsJSON []byte

	err := row.Scan(
		&s.ID, &s.Name, &s.Role, &s.Specialty, &sectorIDs, &s.Status,
		&patternJSON, &prefsJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.SectorIDs = parseUUIDs(sectorIDs)
	if len(patternJSON) > 0 {
		if err := json.Unmarshal(patternJSON, &s.WorkPattern); err != nil {
			return nil, fmt.Errorf("decode work pattern: %w", err)
		}
	}
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &s.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return &s, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(values []string) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
