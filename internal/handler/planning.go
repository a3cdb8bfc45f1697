package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/internal/metrics"
	"github.com/blocplan/blocplan/internal/repository"
	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/generator"
	"github.com/blocplan/blocplan/pkg/stats"
)

// PlanningHandler serves planning generation, validation and publication.
type PlanningHandler struct {
	generator  *generator.Generator
	plannings  *repository.PlanningRepository
	genTimeout time.Duration
}

// NewPlanningHandler creates a planning handler.
func NewPlanningHandler(gen *generator.Generator, plannings *repository.PlanningRepository, genTimeout time.Duration) *PlanningHandler {
	if genTimeout <= 0 {
		genTimeout = 30 * time.Second
	}
	return &PlanningHandler{
		generator:  gen,
		plannings:  plannings,
		genTimeout: genTimeout,
	}
}

// OptionsInput mirrors the generation options.
type OptionsInput struct {
	IncludeWeekends         bool `json:"include_weekends"`
	RespectPreferences      bool `json:"respect_preferences"`
	BalanceWorkload         bool `json:"balance_workload"`
	StrictConflictDetection bool `json:"strict_conflict_detection"`
	IgnoreConflicts         bool `json:"ignore_conflicts"`
}

// GenerateRequest asks for a planning proposal.
type GenerateRequest struct {
	SectorID  string       `json:"sector_id" validate:"required,uuid"`
	StartDate string       `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string       `json:"end_date" validate:"required,datetime=2006-01-02"`
	Options   OptionsInput `json:"options"`
}

// GenerateResponse carries a generation outcome, partial or complete.
type GenerateResponse struct {
	Success    bool                       `json:"success"`
	Phase      string                     `json:"phase"`
	Partial    bool                       `json:"partial,omitempty"`
	Proposal   *model.GenerationResult    `json:"proposal"`
	Blocking   []*model.Conflict          `json:"blocking_conflicts,omitempty"`
	Advisory   []*model.Conflict          `json:"advisory_conflicts,omitempty"`
	Coverage   *stats.CoverageMetrics     `json:"coverage,omitempty"`
	Statistics model.GenerationStatistics `json:"statistics"`
	Duration   string                     `json:"duration"`
}

// Generate runs the planning engine and returns the proposal without
// persisting anything.
func (h *PlanningHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto GenerateRequest
	if appErr := decodeAndValidate(r, &dto); appErr != nil {
		respondError(w, appErr)
		return
	}

	req, appErr := h.toModelRequest(dto)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	genCtx, cancel := context.WithTimeout(r.Context(), h.genTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.generator.Generate(genCtx, req)
	metrics.RecordGeneration(dto.SectorID, err == nil, time.Since(start))
	if err != nil {
		respondError(w, err)
		return
	}

	for _, c := range result.Generation.Conflicts {
		metrics.RecordConflict(string(c.Type), string(c.Severity))
	}

	coverage := stats.NewCoverageAnalyzer().Analyze(result.Generation, nil)
	metrics.SetCoverageRate(dto.SectorID, coverage.OverallCoverage)

	respondJSON(w, http.StatusOK, &GenerateResponse{
		Success:    result.Phase == generator.PhaseComplete,
		Phase:      string(result.Phase),
		Partial:    result.Generation.Statistics.UnassignedSlots > 0,
		Proposal:   result.Generation,
		Blocking:   result.Classification.Blocking,
		Advisory:   result.Classification.Advisory,
		Coverage:   coverage,
		Statistics: result.Generation.Statistics,
		Duration:   result.Generation.Statistics.Duration.String(),
	})
}

// ValidateRequest asks for a conflict check on a submitted assignment set.
type ValidateRequest struct {
	SectorID    string            `json:"sector_id" validate:"required,uuid"`
	StartDate   string            `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string            `json:"end_date" validate:"required,datetime=2006-01-02"`
	Options     OptionsInput      `json:"options"`
	Assignments []AssignmentInput `json:"assignments" validate:"required,min=1,dive"`
}

// ValidateResponse reports the conflicts an assignment set carries.
type ValidateResponse struct {
	Valid     bool              `json:"valid"`
	Conflicts []*model.Conflict `json:"conflicts"`
	Blocking  int               `json:"blocking_count"`
	Warnings  int               `json:"warning_count"`
}

// Validate checks a submitted assignment set against current data.
func (h *PlanningHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var dto ValidateRequest
	if appErr := decodeAndValidate(r, &dto); appErr != nil {
		respondError(w, appErr)
		return
	}

	req, appErr := h.toModelRequest(GenerateRequest{
		SectorID:  dto.SectorID,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		Options:   dto.Options,
	})
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignments, appErr := parseAssignments(req.SectorID, dto.Assignments)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	conflicts, err := h.generator.Validate(r.Context(), req, assignments)
	if err != nil {
		respondError(w, err)
		return
	}

	blocking := 0
	for _, c := range conflicts {
		metrics.RecordConflict(string(c.Type), string(c.Severity))
		if c.IsBlocking() {
			blocking++
		}
	}

	respondJSON(w, http.StatusOK, &ValidateResponse{
		Valid:     blocking == 0,
		Conflicts: conflicts,
		Blocking:  blocking,
		Warnings:  len(conflicts) - blocking,
	})
}

// PublishRequest asks to persist a proposal.
type PublishRequest struct {
	SectorID              string            `json:"sector_id" validate:"required,uuid"`
	StartDate             string            `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate               string            `json:"end_date" validate:"required,datetime=2006-01-02"`
	Options               OptionsInput      `json:"options"`
	Assignments           []AssignmentInput `json:"assignments" validate:"required,min=1,dive"`
	ConfirmIgnoreWarnings bool              `json:"confirm_ignore_warnings"`
}

// PublishResponse reports the published planning.
type PublishResponse struct {
	PlanningID string `json:"planning_id"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
	Published  int    `json:"published_assignments"`
}

// Publish re-validates a proposal against fresh data under the publish
// lock and persists it. If the planning changed since generation, the new
// blocking conflicts are returned and nothing is written.
func (h *PlanningHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var dto PublishRequest
	if appErr := decodeAndValidate(r, &dto); appErr != nil {
		respondError(w, appErr)
		return
	}

	req, appErr := h.toModelRequest(GenerateRequest{
		SectorID:  dto.SectorID,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		Options:   dto.Options,
	})
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignments, appErr := parseAssignments(req.SectorID, dto.Assignments)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result := &model.GenerationResult{
		SectorID:    req.SectorID,
		DateRange:   req.DateRange,
		Assignments: assignments,
	}
	revalidate := func(ctx context.Context) ([]*model.Conflict, error) {
		return h.generator.Validate(ctx, req, assignments)
	}

	planning, err := h.plannings.Publish(r.Context(), result, dto.ConfirmIgnoreWarnings, revalidate)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeConcurrency) {
			metrics.RecordPublishRejected(dto.SectorID)
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &PublishResponse{
		PlanningID: planning.ID.String(),
		Status:     string(planning.Status),
		Version:    planning.Version,
		Published:  len(assignments),
	})
}

func (h *PlanningHandler) toModelRequest(dto GenerateRequest) (model.GenerationRequest, *apperrors.AppError) {
	sectorID, err := uuid.Parse(dto.SectorID)
	if err != nil {
		return model.GenerationRequest{}, apperrors.InvalidInput("sector_id", "invalid UUID: "+dto.SectorID)
	}
	return model.GenerationRequest{
		SectorID: sectorID,
		DateRange: model.DateRange{
			StartDate: dto.StartDate,
			EndDate:   dto.EndDate,
		},
		Options: model.GenerationOptions{
			IncludeWeekends:         dto.Options.IncludeWeekends,
			RespectPreferences:      dto.Options.RespectPreferences,
			BalanceWorkload:         dto.Options.BalanceWorkload,
			StrictConflictDetection: dto.Options.StrictConflictDetection,
			IgnoreConflicts:         dto.Options.IgnoreConflicts,
		},
	}, nil
}
