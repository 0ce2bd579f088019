package health_test

import (
	"math/rand"
	"testing"

	"codeberg.org/mutker/healthctl/internal/health"
	"codeberg.org/mutker/healthctl/internal/smart"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryMax = map[string]int{
	health.CategoryCPU:      25,
	health.CategoryStorage:  25,
	health.CategoryMemory:   15,
	health.CategoryBattery:  15,
	health.CategoryGPU:      10,
	health.CategoryServices: 10,
}

func healthySnapshot() *telemetry.Snapshot {
	return &telemetry.Snapshot{
		CPU: &telemetry.CPU{UsagePercent: telemetry.Float(12)},
		Memory: &telemetry.Memory{
			RAM:  telemetry.RAM{Percent: telemetry.Float(40)},
			Swap: telemetry.Swap{Percent: telemetry.Float(0)},
		},
		Temps: telemetry.Temperatures{
			telemetry.SensorCPU:  {Current: 48},
			telemetry.SensorNVMe: {Current: 38},
		},
		Storage: &smart.StorageHealth{Health: smart.HealthPassed, WearPercent: telemetry.Int(2)},
		Battery: &telemetry.Battery{Present: true, Percent: 80, WearPercent: telemetry.Float(5)},
		GPU:     &telemetry.GPU{Nvidia: &telemetry.NvidiaGPU{Temperature: 45}},
	}
}

func sumCategories(res health.Result) int {
	sum := 0
	for _, c := range res.Categories {
		sum += c.Score
	}
	return sum
}

func TestEvaluateHealthy(t *testing.T) {
	res := health.Evaluate(healthySnapshot())

	assert.Equal(t, 100, res.Total)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "healthy", health.Status(res.Total))
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	for _, s := range []*telemetry.Snapshot{nil, {}} {
		res := health.Evaluate(s)
		assert.Equal(t, 100, res.Total)
		assert.Empty(t, res.Issues)
		require.Len(t, res.Categories, 6)
	}
}

func TestEvaluateCategoryOrder(t *testing.T) {
	res := health.Evaluate(nil)

	names := make([]string, 0, len(res.Categories))
	for _, c := range res.Categories {
		names = append(names, c.Name)
		assert.Equal(t, categoryMax[c.Name], c.Max)
	}
	assert.Equal(t, []string{"cpu", "storage", "memory", "battery", "gpu", "services"}, names)
}

func TestEvaluateIssueOrder(t *testing.T) {
	s := &telemetry.Snapshot{
		CPU:      &telemetry.CPU{UsagePercent: telemetry.Float(95)},
		Temps:    telemetry.Temperatures{telemetry.SensorCPU: {Current: 95}, telemetry.SensorNVMe: {Current: 75}},
		Storage:  &smart.StorageHealth{Health: smart.HealthFailed},
		Memory:   &telemetry.Memory{Swap: telemetry.Swap{Percent: telemetry.Float(85)}},
		Battery:  &telemetry.Battery{Present: true, WearPercent: telemetry.Float(30)},
		GPU:      &telemetry.GPU{Nvidia: &telemetry.NvidiaGPU{Temperature: 90}},
		Services: 6,
	}

	res := health.Evaluate(s)

	assert.Equal(t, []string{
		"CPU overheating (95°C)",
		"High CPU usage",
		"SSD SMART health check failed",
		"SSD temperature high (75°C)",
		"Swap heavily used",
		"Battery wear noticeable",
		"NVIDIA GPU overheating",
		"6 failed system services",
	}, res.Issues)
	// 5 + 5 + 10 + 10 + 3 + 0
	assert.Equal(t, 33, res.Total)
	assert.Equal(t, "critical", health.Status(res.Total))
}

func TestEvaluateCPUTemperatureDeduction(t *testing.T) {
	for temp, want := range map[float64]int{95: 15, 82: 8, 79: 0} {
		s := &telemetry.Snapshot{
			CPU:   &telemetry.CPU{},
			Temps: telemetry.Temperatures{telemetry.SensorCPU: {Current: temp}},
		}
		res := health.Evaluate(s)
		assert.Equal(t, 100-want, res.Total, "temp=%v", temp)
	}
}

func TestEvaluateBatteryAbsent(t *testing.T) {
	s := healthySnapshot()
	s.Battery = nil

	res := health.Evaluate(s)

	assert.Equal(t, 15, res.Categories[3].Score)
	for _, issue := range res.Issues {
		assert.NotContains(t, issue, "Battery")
	}
}

func TestEvaluateGPUIgnoresIntel(t *testing.T) {
	s := healthySnapshot()
	s.GPU = &telemetry.GPU{Intel: &telemetry.IntelGPU{Card: "card1", FrequencyMHz: telemetry.Int(1300)}}

	res := health.Evaluate(s)

	assert.Equal(t, 10, res.Categories[4].Score)
	assert.Empty(t, res.Issues)
}

func TestEvaluateServicesSaturate(t *testing.T) {
	res := health.Evaluate(&telemetry.Snapshot{Services: 6})

	assert.Equal(t, 0, res.Categories[5].Score)
	assert.Equal(t, 90, res.Total)
	require.Len(t, res.Issues, 1)
	assert.Contains(t, res.Issues[0], "6")
}

func TestEvaluateIdempotent(t *testing.T) {
	s := healthySnapshot()
	s.Services = 2
	s.Temps[telemetry.SensorCPU] = telemetry.Temperature{Current: 88}

	assert.Equal(t, health.Evaluate(s), health.Evaluate(s))
}

func randomSnapshot(r *rand.Rand) *telemetry.Snapshot {
	maybeFloat := func(maxV float64) *float64 {
		if r.Intn(4) == 0 {
			return nil
		}
		return telemetry.Float(r.Float64() * maxV)
	}

	s := &telemetry.Snapshot{Temps: telemetry.Temperatures{}, Services: r.Intn(12) - 1}
	if r.Intn(2) == 0 {
		s.Temps[telemetry.SensorCPU] = telemetry.Temperature{Current: r.Float64() * 110}
	}
	if r.Intn(2) == 0 {
		s.Temps[telemetry.SensorNVMe] = telemetry.Temperature{Current: r.Float64() * 100}
	}
	if r.Intn(3) > 0 {
		s.CPU = &telemetry.CPU{UsagePercent: maybeFloat(100)}
	}
	if r.Intn(3) > 0 {
		s.Memory = &telemetry.Memory{
			RAM:  telemetry.RAM{Percent: maybeFloat(100)},
			Swap: telemetry.Swap{Percent: maybeFloat(100)},
		}
	}
	if r.Intn(3) > 0 {
		verdicts := []smart.Health{smart.HealthPassed, smart.HealthFailed, smart.HealthError, smart.HealthUnknown}
		h := &smart.StorageHealth{Health: verdicts[r.Intn(len(verdicts))]}
		if r.Intn(2) == 0 {
			h.WearPercent = telemetry.Int(r.Intn(120))
		}
		s.Storage = h
	}
	if r.Intn(3) > 0 {
		s.Battery = &telemetry.Battery{Present: r.Intn(2) == 0, WearPercent: maybeFloat(100)}
	}
	if r.Intn(3) > 0 {
		s.GPU = &telemetry.GPU{}
		if r.Intn(2) == 0 {
			s.GPU.Nvidia = &telemetry.NvidiaGPU{Temperature: r.Intn(110)}
		}
	}

	return s
}

func TestEvaluateBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		s := randomSnapshot(r)
		res := health.Evaluate(s)

		require.GreaterOrEqual(t, res.Total, 0)
		require.LessOrEqual(t, res.Total, 100)
		require.Equal(t, sumCategories(res), res.Total)
		for _, c := range res.Categories {
			require.GreaterOrEqual(t, c.Score, 0, c.Name)
			require.LessOrEqual(t, c.Score, c.Max, c.Name)
		}
		require.Equal(t, res, health.Evaluate(s))
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{100, "healthy"},
		{80, "healthy"},
		{79, "degraded"},
		{50, "degraded"},
		{49, "critical"},
		{0, "critical"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, health.Status(tt.total), "total=%d", tt.total)
	}
}
