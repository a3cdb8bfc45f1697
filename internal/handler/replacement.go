package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/internal/metrics"
	"github.com/blocplan/blocplan/internal/repository"
	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/constraint"
	"github.com/blocplan/blocplan/pkg/planner/replacement"
	"github.com/blocplan/blocplan/pkg/stats"
)

// ReplacementHandler serves replacement candidate search and application.
type ReplacementHandler struct {
	plannings     *repository.PlanningRepository
	recommender   *replacement.Recommender
	historyWindow int
}

// NewReplacementHandler creates a replacement handler. historyWindow is
// the number of past days fed into fatigue and workload metrics.
func NewReplacementHandler(plannings *repository.PlanningRepository, historyWindow int) *ReplacementHandler {
	if historyWindow <= 0 {
		historyWindow = 30
	}
	return &ReplacementHandler{
		plannings:     plannings,
		recommender:   replacement.NewRecommender(),
		historyWindow: historyWindow,
	}
}

// SearchRequest asks for replacement candidates for one assignment.
type SearchRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
}

// SearchResponse carries the ranked candidates for one view.
type SearchResponse struct {
	AssignmentID string                   `json:"assignment_id"`
	Filter       string                   `json:"filter"`
	Candidates   []*replacement.Candidate `json:"candidates"`
	Total        int                      `json:"total"`
}

// Search ranks replacement candidates for an assignment. The filter query
// parameter selects the view: all (default), available or recommended.
func (h *ReplacementHandler) Search(w http.ResponseWriter, r *http.Request) {
	var dto SearchRequest
	if appErr := decodeAndValidate(r, &dto); appErr != nil {
		respondError(w, appErr)
		return
	}

	filter, appErr := parseFilter(r.URL.Query().Get("filter"))
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignmentID, _ := uuid.Parse(dto.AssignmentID)
	toReplace, err := h.plannings.GetAssignment(r.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, apperrors.NotFound("assignment", dto.AssignmentID))
			return
		}
		respondError(w, apperrors.DataUnavailable("assignment", err))
		return
	}

	req := model.GenerationRequest{
		SectorID: toReplace.Slot.SectorID,
		DateRange: model.DateRange{
			StartDate: toReplace.Slot.Date,
			EndDate:   toReplace.Slot.Date,
		},
		Options: model.GenerationOptions{IncludeWeekends: true},
	}

	snap, err := h.plannings.LoadSnapshot(r.Context(), req.SectorID, req.DateRange)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("planning snapshot", err))
		return
	}
	if snap.Sector == nil {
		respondError(w, apperrors.UnknownSector(req.SectorID.String()))
		return
	}

	evalCtx := constraint.NewContext(snap, req)

	staffRole := staffRoleFor(toReplace.Role)
	var pool []*model.StaffMember
	for _, s := range snap.Staff {
		if s.Role == staffRole {
			pool = append(pool, s)
		}
	}

	staffMetrics, err := h.buildMetrics(r, snap, pool)
	if err != nil {
		respondError(w, apperrors.DataUnavailable("assignment history", err))
		return
	}

	candidates := h.recommender.Recommend(evalCtx, toReplace, pool, staffMetrics)
	candidates = h.recommender.ApplyFilter(candidates, filter)
	metrics.RecordReplacementSearch(string(filter))

	respondJSON(w, http.StatusOK, &SearchResponse{
		AssignmentID: dto.AssignmentID,
		Filter:       string(filter),
		Candidates:   candidates,
		Total:        len(candidates),
	})
}

// ApplyRequest swaps an assignment over to a chosen candidate.
type ApplyRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	StaffID      string `json:"staff_id" validate:"required,uuid"`
}

// Apply replaces the staff member on an assignment.
func (h *ReplacementHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var dto ApplyRequest
	if appErr := decodeAndValidate(r, &dto); appErr != nil {
		respondError(w, appErr)
		return
	}

	assignmentID, _ := uuid.Parse(dto.AssignmentID)
	staffID, _ := uuid.Parse(dto.StaffID)

	if err := h.plannings.ReplaceAssignment(r.Context(), assignmentID, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, apperrors.NotFound("assignment", dto.AssignmentID))
			return
		}
		respondError(w, apperrors.Wrap(err, apperrors.CodeInternal, "failed to apply replacement"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignment_id": dto.AssignmentID,
		"staff_id":      dto.StaffID,
		"replaced":      true,
	})
}

func (h *ReplacementHandler) buildMetrics(r *http.Request, snap *model.PlanningSnapshot, pool []*model.StaffMember) (map[uuid.UUID]*replacement.StaffMetrics, error) {
	since := time.Now().AddDate(0, 0, -h.historyWindow).Format(model.DateLayout)
	history, err := h.plannings.ListStaffAssignmentsSince(r.Context(), since)
	if err != nil {
		return nil, err
	}
	replacements, err := h.plannings.CountReplacementsThisMonth(r.Context(), time.Now().Format("2006-01"))
	if err != nil {
		return nil, err
	}
	return stats.NewWorkloadAnalyzer().BuildStaffMetrics(pool, snap.Assignments, history, replacements), nil
}

// staffRoleFor maps an assignment role to the staff role that may hold it.
func staffRoleFor(role model.AssignmentRole) model.StaffRole {
	if role == model.AssignmentOperator {
		return model.RoleNurseAnesthetist
	}
	return model.RoleAnesthetist
}

func parseFilter(raw string) (replacement.Filter, *apperrors.AppError) {
	switch replacement.Filter(raw) {
	case "", replacement.FilterAll:
		return replacement.FilterAll, nil
	case replacement.FilterAvailable:
		return replacement.FilterAvailable, nil
	case replacement.FilterRecommended:
		return replacement.FilterRecommended, nil
	default:
		return "", apperrors.InvalidInput("filter", "must be all, available or recommended")
	}
}
