// Package health reduces a telemetry snapshot to a bounded 0-100 score and an
// ordered list of human-readable issues.
package health

import (
	"codeberg.org/mutker/healthctl/internal/telemetry"
)

const maxTotal = 100

// Category names in evaluation order.
const (
	CategoryCPU      = "cpu"
	CategoryStorage  = "storage"
	CategoryMemory   = "memory"
	CategoryBattery  = "battery"
	CategoryGPU      = "gpu"
	CategoryServices = "services"
)

// CategoryScore is one category's bounded contribution to the total.
type CategoryScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Max   int    `json:"max"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Total      int             `json:"score"`
	Issues     []string        `json:"issues"`
	Categories []CategoryScore `json:"categories"`
}

type evaluator struct {
	name string
	max  int
	eval func(*telemetry.Snapshot) (int, []string)
}

var evaluators = []evaluator{
	{CategoryCPU, maxCPU, func(s *telemetry.Snapshot) (int, []string) { return evaluateCPU(s.CPU, s.Temps) }},
	{CategoryStorage, maxStorage, func(s *telemetry.Snapshot) (int, []string) { return evaluateStorage(s.Storage, s.Temps) }},
	{CategoryMemory, maxMemory, func(s *telemetry.Snapshot) (int, []string) { return evaluateMemory(s.Memory) }},
	{CategoryBattery, maxBattery, func(s *telemetry.Snapshot) (int, []string) { return evaluateBattery(s.Battery) }},
	{CategoryGPU, maxGPU, func(s *telemetry.Snapshot) (int, []string) { return evaluateGPU(s.GPU) }},
	{CategoryServices, maxServices, func(s *telemetry.Snapshot) (int, []string) { return evaluateServices(s.Services) }},
}

// Evaluate scores a snapshot. Categories run in a fixed order and their issues
// are concatenated in that order. A nil snapshot scores as fully healthy.
func Evaluate(s *telemetry.Snapshot) Result {
	if s == nil {
		s = &telemetry.Snapshot{}
	}

	res := Result{
		Issues:     []string{},
		Categories: make([]CategoryScore, 0, len(evaluators)),
	}

	total := 0
	for _, e := range evaluators {
		score, issues := e.eval(s)
		total += score
		res.Issues = append(res.Issues, issues...)
		res.Categories = append(res.Categories, CategoryScore{Name: e.name, Score: score, Max: e.max})
	}

	// Category bounds already keep the sum in range.
	res.Total = clamp(total, 0, maxTotal)

	return res
}

// Status buckets a total score for display.
func Status(total int) string {
	switch {
	case total >= 80:
		return "healthy"
	case total >= 50:
		return "degraded"
	default:
		return "critical"
	}
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
