package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/internal/database"
	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/logger"
	"github.com/blocplan/blocplan/pkg/model"
)

// RevalidateFunc re-checks a proposal against fresh persisted state. It
// runs while the publish lock is held.
type RevalidateFunc func(ctx context.Context) ([]*model.Conflict, error)

// PlanningRepository stores plannings and assignments, loads generation
// snapshots, and owns the publish step.
type PlanningRepository struct {
	db      *database.DB
	staff   *StaffRepository
	leaves  *LeaveRepository
	sectors *SectorRepository
	logger  *logger.PlannerLogger
}

// NewPlanningRepository creates a planning repository.
func NewPlanningRepository(db *database.DB, staff *StaffRepository, leaves *LeaveRepository, sectors *SectorRepository) *PlanningRepository {
	return &PlanningRepository{
		db:      db,
		staff:   staff,
		leaves:  leaves,
		sectors: sectors,
		logger:  logger.NewPlannerLogger(),
	}
}

// LoadSnapshot bulk-loads everything a generation run needs for the sector
// and range. One load per run; the engine never goes back to storage.
func (r *PlanningRepository) LoadSnapshot(ctx context.Context, sectorID uuid.UUID, dateRange model.DateRange) (*model.PlanningSnapshot, error) {
	sector, err := r.sectors.GetByID(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	snap := &model.PlanningSnapshot{Sector: sector}
	if sector == nil {
		return snap, nil
	}

	if snap.Rule, err = r.sectors.GetRule(ctx, sectorID); err != nil {
		return nil, err
	}
	if snap.Rooms, err = r.sectors.ListRooms(ctx, sectorID); err != nil {
		return nil, err
	}
	if snap.Staff, err = r.staff.ListActiveForSector(ctx, sectorID); err != nil {
		return nil, err
	}
	if snap.Leaves, err = r.leaves.ListBlockingInRange(ctx, dateRange); err != nil {
		return nil, err
	}
	if snap.Duties, err = r.leaves.ListDutiesInRange(ctx, dateRange); err != nil {
		return nil, err
	}
	if snap.Assignments, err = r.ListAssignmentsInRange(ctx, sectorID, dateRange); err != nil {
		return nil, err
	}
	return snap, nil
}

// ListAssignmentsInRange fetches persisted assignments for the sector and
// inclusive date range.
func (r *PlanningRepository) ListAssignmentsInRange(ctx context.Context, sectorID uuid.UUID, dateRange model.DateRange) ([]*model.Assignment, error) {
	query := `
		SELECT id, date, period, room_id, sector_id, staff_id, role, note,
			created_at, updated_at
		FROM assignments
		WHERE deleted_at IS NULL
			AND sector_id = $1
			AND date >= $2 AND date <= $3
		ORDER BY date ASC, period ASC, room_id ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sectorID, dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []*model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListStaffAssignmentsSince fetches a staff pool's assignments from a date
// onwards, for workload history.
func (r *PlanningRepository) ListStaffAssignmentsSince(ctx context.Context, since string) ([]*model.Assignment, error) {
	query := `
		SELECT id, date, period, room_id, sector_id, staff_id, role, note,
			created_at, updated_at
		FROM assignments
		WHERE deleted_at IS NULL AND date >= $1
		ORDER BY date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list assignment history: %w", err)
	}
	defer rows.Close()

	var out []*model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAssignment fetches one assignment.
func (r *PlanningRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	query := `
		SELECT id, date, period, room_id, sector_id, staff_id, role, note,
			created_at, updated_at
		FROM assignments
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanAssignment(r.db.QueryRowContext(ctx, query, id))
}

// CountReplacementsThisMonth counts how many assignments each staff member
// took over as a replacement in the current month.
func (r *PlanningRepository) CountReplacementsThisMonth(ctx context.Context, month string) (map[uuid.UUID]int, error) {
	query := `
		SELECT staff_id, COUNT(*)
		FROM assignments
		WHERE deleted_at IS NULL
			AND note = 'replacement'
			AND date LIKE $1 || '%'
		GROUP BY staff_id
	`
	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("count replacements: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		out[id] = count
	}
	return out, rows.Err()
}

// Publish persists a generation result. Publishes for the same sector and
// range serialize on an advisory lock; the proposal is re-validated
// against fresh data while the lock is held. New blocking conflicts abort
// with a planning-changed error, warnings require explicit confirmation.
func (r *PlanningRepository) Publish(ctx context.Context, result *model.GenerationResult, confirmIgnoreWarnings bool, revalidate RevalidateFunc) (*model.Planning, error) {
	key := fmt.Sprintf("publish|%s|%s|%s", result.SectorID, result.DateRange.StartDate, result.DateRange.EndDate)

	var planning *model.Planning
	err := r.db.WithAdvisoryLock(ctx, key, func(tx *sql.Tx) error {
		conflicts, err := revalidate(ctx)
		if err != nil {
			return err
		}
		if err := reviewRevalidation(conflicts, confirmIgnoreWarnings); err != nil {
			if apperrors.Is(err, apperrors.CodeConcurrency) {
				blocked := 0
				for _, c := range conflicts {
					if c.IsBlocking() {
						blocked++
					}
				}
				r.logger.PublishRejected(result.SectorID.String(), blocked)
			}
			return err
		}

		planning = &model.Planning{
			BaseModel: model.NewBaseModel(),
			SectorID:  result.SectorID,
			DateRange: result.DateRange,
			Status:    model.PlanningPublished,
			Version:   1,
		}
		if err := r.insertPlanning(ctx, tx, planning); err != nil {
			return err
		}
		for _, a := range result.Assignments {
			if err := r.insertAssignment(ctx, tx, planning.ID, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return planning, nil
}

// reviewRevalidation decides whether a publish may proceed given the
// conflicts found against fresh data. Blocking conflicts mean the planning
// changed underneath the caller; warnings pass only with explicit
// confirmation.
func reviewRevalidation(conflicts []*model.Conflict, confirmIgnoreWarnings bool) error {
	var blocking, warnings []*model.Conflict
	for _, c := range conflicts {
		if c.IsBlocking() {
			blocking = append(blocking, c)
		} else {
			warnings = append(warnings, c)
		}
	}

	if len(blocking) > 0 {
		return apperrors.PlanningChanged(blocking)
	}
	if len(warnings) > 0 && !confirmIgnoreWarnings {
		return apperrors.New(apperrors.CodeConflict, "planning has warnings, confirmation required").
			WithField("warnings", warnings)
	}
	return nil
}

func (r *PlanningRepository) insertPlanning(ctx context.Context, tx *sql.Tx, p *model.Planning) error {
	query := `
		INSERT INTO plannings (id, sector_id, start_date, end_date, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		p.ID, p.SectorID, p.DateRange.StartDate, p.DateRange.EndDate,
		p.Status, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert planning: %w", err)
	}
	return nil
}

func (r *PlanningRepository) insertAssignment(ctx context.Context, tx *sql.Tx, planningID uuid.UUID, a *model.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO assignments (
			id, planning_id, date, period, room_id, sector_id, staff_id, role, note,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, query,
		a.ID, planningID, a.Slot.Date, a.Slot.Period, a.Slot.RoomID, a.Slot.SectorID,
		a.StaffID, a.Role, a.Note, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// DeleteAssignment soft-deletes an assignment, for cancellations and
// manual edits.
func (r *PlanningRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE assignments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceAssignment swaps the staff member on an assignment, marking it as
// a replacement.
func (r *PlanningRepository) ReplaceAssignment(ctx context.Context, id, newStaffID uuid.UUID) error {
	query := `
		UPDATE assignments SET staff_id = $2, note = 'replacement', updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, newStaffID, time.Now())
	if err != nil {
		return fmt.Errorf("replace assignment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAssignment(row Scanner) (*model.Assignment, error) {
	var a model.Assignment
	err := row.Scan(
		&a.ID, &a.Slot.Date, &a.Slot.Period, &a.Slot.RoomID, &a.Slot.SectorID,
		&a.StaffID, &a.Role, &a.Note, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
