// Package replacement ranks candidate staff to take over an existing
// assignment.
package replacement

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/logger"
	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/constraint"
)

// AvailabilityState summarizes a candidate's availability for the slot.
type AvailabilityState string

const (
	StateAvailable AvailabilityState = "available"
	StatePartial   AvailabilityState = "partial"
	StateBusy      AvailabilityState = "busy"
)

// Filter selects which candidates a view shows.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterAvailable   Filter = "available"
	FilterRecommended Filter = "recommended"
)

// RecommendedThreshold is the minimum score for the recommended view.
const RecommendedThreshold = 70.0

// Scoring weights. Availability gates the whole score: a busy candidate
// scores 0 regardless of the other factors. Workload ratio and fatigue
// count against a candidate, reliability counts for them.
const (
	weightAvailability = 0.40
	weightWorkload     = 0.25
	weightFatigue      = 0.15
	weightReliability  = 0.20
)

// StaffMetrics carries the history-derived inputs for one candidate.
type StaffMetrics struct {
	StaffID               uuid.UUID `json:"staff_id"`
	CurrentAssignments    float64   `json:"current_assignments"`
	AverageAssignments    float64   `json:"average_assignments"`
	FatigueScore          float64   `json:"fatigue_score"` // 0-100, higher is more tired
	Reliability           float64   `json:"reliability"`   // 0-100
	ReplacementsThisMonth int       `json:"replacements_this_month"`
}

// WorkloadRatio returns current over average load. An unknown average
// counts as balanced.
func (m *StaffMetrics) WorkloadRatio() float64 {
	if m.AverageAssignments <= 0 {
		return 1
	}
	return m.CurrentAssignments / m.AverageAssignments
}

// Candidate is one ranked replacement candidate.
type Candidate struct {
	Staff         *model.StaffMember `json:"staff"`
	Availability  AvailabilityState  `json:"availability"`
	WorkloadRatio float64            `json:"workload_ratio"`
	FatigueScore  float64            `json:"fatigue_score"`
	Reliability   float64            `json:"reliability"`
	Score         float64            `json:"score"` // 0-100
	Rank          int                `json:"rank"`
	Reason        string             `json:"reason"`
}

// Recommender scores and ranks replacement candidates.
type Recommender struct {
	logger *logger.PlannerLogger
}

// NewRecommender creates a recommender.
func NewRecommender() *Recommender {
	return &Recommender{logger: logger.NewPlannerLogger()}
}

// Recommend scores the pool for taking over the assignment and returns it
// sorted by score descending, ties broken by staff ID ascending. The
// original holder and inactive staff are skipped. Filtering by view
// happens afterwards via ApplyFilter so one computation serves every view.
func (r *Recommender) Recommend(evalCtx *constraint.Context, toReplace *model.Assignment, pool []*model.StaffMember, metrics map[uuid.UUID]*StaffMetrics) []*Candidate {
	var candidates []*Candidate

	for _, staff := range pool {
		if staff.ID == toReplace.StaffID || !staff.IsActive() {
			continue
		}

		state := r.availabilityState(evalCtx, staff.ID, toReplace)
		m := metrics[staff.ID]
		if m == nil {
			m = &StaffMetrics{StaffID: staff.ID, Reliability: 50}
		}

		c := &Candidate{
			Staff:         staff,
			Availability:  state,
			WorkloadRatio: m.WorkloadRatio(),
			FatigueScore:  m.FatigueScore,
			Reliability:   m.Reliability,
		}
		c.Score = r.score(c)
		c.Reason = r.reason(c)
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Staff.ID.String() < candidates[j].Staff.ID.String()
	})
	for i, c := range candidates {
		c.Rank = i + 1
	}

	return candidates
}

// ApplyFilter narrows a ranked list to a view. Busy candidates are kept in
// the all view only.
func (r *Recommender) ApplyFilter(candidates []*Candidate, filter Filter) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		switch filter {
		case FilterAvailable:
			if c.Availability == StateBusy {
				continue
			}
		case FilterRecommended:
			if c.Availability == StateBusy || c.Score < RecommendedThreshold {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// availabilityState resolves the candidate's state for the slot. A full
// day slot where only one half is free counts as partial.
func (r *Recommender) availabilityState(evalCtx *constraint.Context, staffID uuid.UUID, toReplace *model.Assignment) AvailabilityState {
	slot := toReplace.Slot

	if slot.Period == model.PeriodFullDay {
		morning := slot
		morning.Period = model.PeriodMorning
		afternoon := slot
		afternoon.Period = model.PeriodAfternoon

		freeMorning := evalCtx.Availability.FreeFor(staffID, morning, toReplace.Role).Available
		freeAfternoon := evalCtx.Availability.FreeFor(staffID, afternoon, toReplace.Role).Available
		switch {
		case freeMorning && freeAfternoon:
			return StateAvailable
		case freeMorning || freeAfternoon:
			return StatePartial
		default:
			return StateBusy
		}
	}

	if evalCtx.Availability.FreeFor(staffID, slot, toReplace.Role).Available {
		return StateAvailable
	}
	return StateBusy
}

// score computes the 0-100 composite. Monotonic: availability gates,
// workload ratio lower is better, fatigue lower is better, reliability
// higher is better.
func (r *Recommender) score(c *Candidate) float64 {
	if c.Availability == StateBusy {
		return 0
	}

	availFactor := 1.0
	if c.Availability == StatePartial {
		availFactor = 0.5
	}

	workloadFactor := 1 - clamp(c.WorkloadRatio/2, 0, 1)
	fatigueFactor := 1 - clamp(c.FatigueScore/100, 0, 1)
	reliabilityFactor := clamp(c.Reliability/100, 0, 1)

	score := 100 * (weightAvailability*availFactor +
		weightWorkload*workloadFactor +
		weightFatigue*fatigueFactor +
		weightReliability*reliabilityFactor)

	return clamp(score, 0, 100)
}

func (r *Recommender) reason(c *Candidate) string {
	switch {
	case c.Availability == StateBusy:
		return "already booked for this slot"
	case c.Availability == StatePartial:
		return "free for part of the day"
	case c.WorkloadRatio < 1:
		return fmt.Sprintf("below average workload (%.0f%%)", c.WorkloadRatio*100)
	case c.Reliability >= 80:
		return "high reliability"
	default:
		return "can take over this assignment"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
