// Package stats provides workload and coverage analysis over plannings.
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/replacement"
)

// WorkloadMetrics summarizes how evenly assignments are spread over staff.
type WorkloadMetrics struct {
	AssignmentGini float64 `json:"assignment_gini"` // 0=even, 1=uneven
	Variance       float64 `json:"variance"`
	StdDev         float64 `json:"std_dev"`
	AvgPerStaff    float64 `json:"avg_per_staff"`
	MaxAssignments int     `json:"max_assignments"`
	MinAssignments int     `json:"min_assignments"`

	StaffStats []StaffStat `json:"staff_stats"`

	// EquityScore grades the distribution 0-100, 100 being a perfectly
	// even spread.
	EquityScore float64 `json:"equity_score"`
}

// StaffStat is the per-staff breakdown.
type StaffStat struct {
	StaffID      uuid.UUID `json:"staff_id"`
	StaffName    string    `json:"staff_name"`
	Assignments  int       `json:"assignments"`
	Supervisions int       `json:"supervisions"`
	WeekendSlots int       `json:"weekend_slots"`
	Deviation    float64   `json:"deviation"` // percent from mean
}

// WorkloadAnalyzer computes workload metrics.
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer creates an analyzer.
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze computes the spread of assignments over the given staff. Staff
// with no assignments count as zero so an idle member drags equity down.
func (w *WorkloadAnalyzer) Analyze(assignments []*model.Assignment, staff []*model.StaffMember) *WorkloadMetrics {
	if len(staff) == 0 {
		return &WorkloadMetrics{EquityScore: 100}
	}

	statMap := make(map[uuid.UUID]*StaffStat)
	for _, s := range staff {
		statMap[s.ID] = &StaffStat{StaffID: s.ID, StaffName: s.Name}
	}

	for _, a := range assignments {
		stat, ok := statMap[a.StaffID]
		if !ok {
			stat = &StaffStat{StaffID: a.StaffID}
			statMap[a.StaffID] = stat
		}
		stat.Assignments++
		if a.Role == model.AssignmentSupervisor {
			stat.Supervisions++
		}
		if model.IsWeekend(a.Slot.Date) {
			stat.WeekendSlots++
		}
	}

	stats := make([]StaffStat, 0, len(statMap))
	counts := make([]float64, 0, len(statMap))
	for _, stat := range statMap {
		stats = append(stats, *stat)
		counts = append(counts, float64(stat.Assignments))
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Assignments != stats[j].Assignments {
			return stats[i].Assignments > stats[j].Assignments
		}
		return stats[i].StaffID.String() < stats[j].StaffID.String()
	})

	mean := meanOf(counts)
	variance := varianceOf(counts, mean)
	stdDev := math.Sqrt(variance)
	maxC, minC := rangeOf(counts)

	for i := range stats {
		if mean > 0 {
			stats[i].Deviation = (float64(stats[i].Assignments) - mean) / mean * 100
		}
	}

	gini := giniOf(counts)

	return &WorkloadMetrics{
		AssignmentGini: gini,
		Variance:       variance,
		StdDev:         stdDev,
		AvgPerStaff:    mean,
		MaxAssignments: int(maxC),
		MinAssignments: int(minC),
		StaffStats:     stats,
		EquityScore:    equityScore(gini, stdDev, mean),
	}
}

// BuildStaffMetrics derives the replacement recommender's inputs from
// current and historical assignments. Fatigue grows with the share of
// recent days worked; reliability starts from a full score and loses a
// little per replacement already taken this month.
func (w *WorkloadAnalyzer) BuildStaffMetrics(staff []*model.StaffMember, current, history []*model.Assignment, replacementsByStaff map[uuid.UUID]int) map[uuid.UUID]*replacement.StaffMetrics {
	currentCounts := make(map[uuid.UUID]int)
	for _, a := range current {
		currentCounts[a.StaffID]++
	}
	historyCounts := make(map[uuid.UUID]int)
	historyDays := make(map[uuid.UUID]map[string]bool)
	for _, a := range history {
		historyCounts[a.StaffID]++
		if historyDays[a.StaffID] == nil {
			historyDays[a.StaffID] = make(map[string]bool)
		}
		historyDays[a.StaffID][a.Slot.Date] = true
	}

	var totalHistory int
	for _, c := range historyCounts {
		totalHistory += c
	}
	average := 0.0
	if len(staff) > 0 {
		average = float64(totalHistory) / float64(len(staff))
	}

	out := make(map[uuid.UUID]*replacement.StaffMetrics, len(staff))
	for _, s := range staff {
		fatigue := 0.0
		if days := len(historyDays[s.ID]); days > 0 {
			fatigue = math.Min(100, float64(days)/14*100)
		}
		reliability := 100.0 - 5*float64(replacementsByStaff[s.ID])
		if reliability < 0 {
			reliability = 0
		}
		out[s.ID] = &replacement.StaffMetrics{
			StaffID:               s.ID,
			CurrentAssignments:    float64(currentCounts[s.ID]),
			AverageAssignments:    average,
			FatigueScore:          fatigue,
			Reliability:           reliability,
			ReplacementsThisMonth: replacementsByStaff[s.ID],
		}
	}
	return out
}

// equityScore turns the gini and the coefficient of variation into a
// 0-100 grade.
func equityScore(gini, stdDev, mean float64) float64 {
	giniScore := (1 - gini) * 100
	cvScore := 100.0
	if mean > 0 {
		cv := stdDev / mean
		cvScore = math.Max(0, 100-cv*200)
	}
	score := 0.6*giniScore + 0.4*cvScore
	return math.Max(0, math.Min(100, score))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

func giniOf(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}
	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}
