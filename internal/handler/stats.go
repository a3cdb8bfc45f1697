package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/internal/metrics"
	"github.com/blocplan/blocplan/internal/repository"
	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/stats"
)

// StatsHandler serves workload and coverage statistics over persisted
// assignments.
type StatsHandler struct {
	plannings *repository.PlanningRepository
	staff     *repository.StaffRepository
	sectors   *repository.SectorRepository
	workload  *stats.WorkloadAnalyzer
	coverage  *stats.CoverageAnalyzer
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(plannings *repository.PlanningRepository, staff *repository.StaffRepository, sectors *repository.SectorRepository) *StatsHandler {
	return &StatsHandler{
		plannings: plannings,
		staff:     staff,
		sectors:   sectors,
		workload:  stats.NewWorkloadAnalyzer(),
		coverage:  stats.NewCoverageAnalyzer(),
	}
}

// Workload reports workload distribution for a sector and date range.
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	sectorID, dateRange, appErr := statsParams(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignments, err := h.plannings.ListAssignmentsInRange(r.Context(), sectorID, dateRange)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("assignments", err))
		return
	}
	staff, err := h.staff.ListActiveForSector(r.Context(), sectorID)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("staff", err))
		return
	}

	result := h.workload.Analyze(assignments, staff)
	metrics.SetWorkloadGini(sectorID.String(), result.AssignmentGini)

	respondJSON(w, http.StatusOK, result)
}

// Coverage reports slot coverage for a sector and date range.
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	sectorID, dateRange, appErr := statsParams(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignments, err := h.plannings.ListAssignmentsInRange(r.Context(), sectorID, dateRange)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("assignments", err))
		return
	}
	rooms, err := h.sectors.ListRooms(r.Context(), sectorID)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("rooms", err))
		return
	}
	rule, err := h.sectors.GetRule(r.Context(), sectorID)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("sector rule", err))
		return
	}

	weekdays := 0
	for _, date := range dateRange.Days() {
		if !model.IsWeekend(date) {
			weekdays++
		}
	}
	// Two periods and two roles per room slot, matching the generation grid.
	total := weekdays * 2 * len(rooms) * 2

	result := &model.GenerationResult{
		SectorID:    sectorID,
		DateRange:   dateRange,
		Assignments: assignments,
		Statistics: model.GenerationStatistics{
			TotalSlots:      total,
			AssignedSlots:   len(assignments),
			UnassignedSlots: total - len(assignments),
		},
	}

	coverage := h.coverage.Analyze(result, rule)
	metrics.SetCoverageRate(sectorID.String(), coverage.OverallCoverage)

	respondJSON(w, http.StatusOK, coverage)
}

func statsParams(r *http.Request) (uuid.UUID, model.DateRange, *apperrors.AppError) {
	q := r.URL.Query()

	sectorID, err := uuid.Parse(q.Get("sector_id"))
	if err != nil {
		return uuid.Nil, model.DateRange{}, apperrors.InvalidInput("sector_id", "must be a UUID")
	}

	dateRange := model.DateRange{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if err := dateRange.Validate(); err != nil {
		return uuid.Nil, model.DateRange{}, apperrors.InvalidDateRange(dateRange.StartDate, dateRange.EndDate).WithCause(err)
	}

	return sectorID, dateRange, nil
}
