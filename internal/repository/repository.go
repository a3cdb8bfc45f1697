// Package repository provides the data access layer.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Repository is the generic entity store contract.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*T, int, error)
}

// ListFilter narrows list queries.
type ListFilter struct {
	SectorID  *uuid.UUID `json:"sector_id,omitempty"`
	StaffID   *uuid.UUID `json:"staff_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	Search    string     `json:"search,omitempty"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	Offset    int        `json:"offset"`
	Limit     int        `json:"limit"`
	OrderBy   string     `json:"order_by,omitempty"`
	OrderDir  string     `json:"order_dir,omitempty"` // asc/desc
}

// DefaultListFilter returns the default filter.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset:   0,
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// WithLimit sets the page size.
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the page offset.
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithSectorID filters by sector.
func (f ListFilter) WithSectorID(sectorID uuid.UUID) ListFilter {
	f.SectorID = &sectorID
	return f
}

// WithStaffID filters by staff member.
func (f ListFilter) WithStaffID(staffID uuid.UUID) ListFilter {
	f.StaffID = &staffID
	return f
}

// WithStatus filters by status.
func (f ListFilter) WithStatus(status string) ListFilter {
	f.Status = status
	return f
}

// WithDateRange filters by date range.
func (f ListFilter) WithDateRange(start, end string) ListFilter {
	f.StartDate = start
	f.EndDate = end
	return f
}

// DB is the query interface shared by the pool and transactions.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx is the transaction interface.
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// Scanner scans one row.
type Scanner interface {
	Scan(dest ...interface{}) error
}
