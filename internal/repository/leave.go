package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
)

// LeaveRepository stores leave periods and duty records.
type LeaveRepository struct {
	db DB
}

// NewLeaveRepository creates a leave repository.
func NewLeaveRepository(db DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave period.
func (r *LeaveRepository) Create(ctx context.Context, l *model.LeavePeriod) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
		INSERT INTO leave_periods (
			id, staff_id, start_date, end_date, period, type, status, reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.StaffID, l.StartDate, l.EndDate, l.Period, l.Type, l.Status, l.Reason,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create leave period: %w", err)
	}
	return nil
}

// GetByID fetches a leave period.
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LeavePeriod, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, period, type, status, reason,
			created_at, updated_at
		FROM leave_periods
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanLeave(r.db.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves a leave through its workflow.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeaveStatus) error {
	query := `
		UPDATE leave_periods SET status = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListBlockingInRange fetches pending and approved leaves overlapping the
// inclusive date range. Rejected and cancelled leaves are filtered here so
// they never reach the availability index.
func (r *LeaveRepository) ListBlockingInRange(ctx context.Context, dateRange model.DateRange) ([]*model.LeavePeriod, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, period, type, status, reason,
			created_at, updated_at
		FROM leave_periods
		WHERE deleted_at IS NULL
			AND status IN ('pending', 'approved')
			AND start_date <= $2
			AND end_date >= $1
		ORDER BY start_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list blocking leaves: %w", err)
	}
	defer rows.Close()

	var out []*model.LeavePeriod
	for rows.Next() {
		l, err := r.scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListDutiesInRange fetches duty records overlapping the date range.
func (r *LeaveRepository) ListDutiesInRange(ctx context.Context, dateRange model.DateRange) ([]*model.DutyRecord, error) {
	query := `
		SELECT id, staff_id, date, type, created_at, updated_at
		FROM duty_records
		WHERE deleted_at IS NULL
			AND date >= $1 AND date <= $2
		ORDER BY date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	defer rows.Close()

	var out []*model.DutyRecord
	for rows.Next() {
		var d model.DutyRecord
		if err := rows.Scan(&d.ID, &d.StaffID, &d.Date, &d.Type, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// CreateDuty inserts a duty record.
func (r *LeaveRepository) CreateDuty(ctx context.Context, d *model.DutyRecord) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO duty_records (id, staff_id, date, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.StaffID, d.Date, d.Type, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create duty record: %w", err)
	}
	return nil
}

func (r *LeaveRepository) scanLeave(row Scanner) (*model.LeavePeriod, error) {
	var l model.LeavePeriod
	err := row.Scan(
		&l.ID, &l.StaffID, &l.StartDate, &l.EndDate, &l.Period, &l.Type, &l.Status, &l.Reason,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
