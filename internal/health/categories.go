package health

import (
	"fmt"
	"strconv"

	"codeberg.org/mutker/healthctl/internal/smart"
	"codeberg.org/mutker/healthctl/internal/telemetry"
)

const (
	maxCPU      = 25
	maxStorage  = 25
	maxMemory   = 15
	maxBattery  = 15
	maxGPU      = 10
	maxServices = 10
)

// A band applies its deduction when the reading is at or above threshold.
// Bands are listed most severe first and only the first match counts.
type band struct {
	threshold float64
	deduction int
	issue     string
}

func firstBand(value float64, bands []band) (band, bool) {
	for _, b := range bands {
		if value >= b.threshold {
			return b, true
		}
	}

	return band{}, false
}

var (
	cpuTempBands = []band{
		{90, 15, "CPU overheating (%s°C)"},
		{80, 8, "CPU temperature high (%s°C)"},
	}
	storageWearBands = []band{
		{80, 10, "SSD near end of life"},
		{50, 5, "SSD wear increasing"},
	}
	storageTempBands = []band{
		{80, 10, "SSD overheating (%s°C)"},
		{70, 5, "SSD temperature high (%s°C)"},
	}
	ramBands = []band{
		{95, 10, "RAM critically high usage"},
		{85, 5, "RAM usage high"},
	}
	batteryWearBands = []band{
		{40, 10, "Battery heavily worn"},
		{25, 5, "Battery wear noticeable"},
	}
	gpuTempBands = []band{
		{85, 7, "NVIDIA GPU overheating"},
		{75, 3, "NVIDIA GPU temperature high"},
	}
)

const (
	cpuUsageLimit     = 90
	cpuUsageDeduction = 5
	swapLimit         = 80
	swapDeduction     = 5
	storageUnhealthy  = 15
	perFailedService  = 2
)

func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// evaluateCPU is gated on the CPU temperature reading: without it the
// category is not applicable, whatever the usage.
func evaluateCPU(cpu *telemetry.CPU, temps telemetry.Temperatures) (int, []string) {
	score := maxCPU
	issues := []string{}

	temp, ok := temps.Get(telemetry.SensorCPU)
	if cpu == nil || !ok {
		return score, issues
	}

	if b, ok := firstBand(temp, cpuTempBands); ok {
		score -= b.deduction
		issues = append(issues, fmt.Sprintf(b.issue, formatTemp(temp)))
	}

	if cpu.UsagePercent != nil && *cpu.UsagePercent > cpuUsageLimit {
		score -= cpuUsageDeduction
		issues = append(issues, "High CPU usage")
	}

	return clamp(score, 0, maxCPU), issues
}

func evaluateStorage(h *smart.StorageHealth, temps telemetry.Temperatures) (int, []string) {
	score := maxStorage
	issues := []string{}

	if h == nil {
		return score, issues
	}

	if h.Health != smart.HealthPassed {
		score -= storageUnhealthy
		issues = append(issues, "SSD SMART health check failed")
	}

	if h.WearPercent != nil {
		if b, ok := firstBand(float64(*h.WearPercent), storageWearBands); ok {
			score -= b.deduction
			issues = append(issues, b.issue)
		}
	}

	if temp, ok := temps.Get(telemetry.SensorNVMe); ok {
		if b, ok := firstBand(temp, storageTempBands); ok {
			score -= b.deduction
			issues = append(issues, fmt.Sprintf(b.issue, formatTemp(temp)))
		}
	}

	return clamp(score, 0, maxStorage), issues
}

func evaluateMemory(mem *telemetry.Memory) (int, []string) {
	score := maxMemory
	issues := []string{}

	if mem == nil {
		return score, issues
	}

	if mem.RAM.Percent != nil {
		if b, ok := firstBand(*mem.RAM.Percent, ramBands); ok {
			score -= b.deduction
			issues = append(issues, b.issue)
		}
	}

	if mem.Swap.Percent != nil && *mem.Swap.Percent >= swapLimit {
		score -= swapDeduction
		issues = append(issues, "Swap heavily used")
	}

	return clamp(score, 0, maxMemory), issues
}

// Batteries are optional hardware; a machine without one is not degraded.
func evaluateBattery(bat *telemetry.Battery) (int, []string) {
	score := maxBattery
	issues := []string{}

	if bat == nil || !bat.Present {
		return score, issues
	}

	if bat.WearPercent != nil {
		if b, ok := firstBand(*bat.WearPercent, batteryWearBands); ok {
			score -= b.deduction
			issues = append(issues, b.issue)
		}
	}

	return clamp(score, 0, maxBattery), issues
}

// A powered-down discrete GPU (Optimus) reports nothing and counts as healthy.
// Only the NVIDIA reading is scored.
func evaluateGPU(gpu *telemetry.GPU) (int, []string) {
	score := maxGPU
	issues := []string{}

	if gpu == nil || gpu.Nvidia == nil {
		return score, issues
	}

	if b, ok := firstBand(float64(gpu.Nvidia.Temperature), gpuTempBands); ok {
		score -= b.deduction
		issues = append(issues, b.issue)
	}

	return clamp(score, 0, maxGPU), issues
}

func evaluateServices(failed int) (int, []string) {
	score := maxServices
	issues := []string{}

	if failed > 0 {
		deduction := maxServices
		if failed < maxServices/perFailedService {
			deduction = failed * perFailedService
		}
		score -= deduction
		issues = append(issues, fmt.Sprintf("%d failed system services", failed))
	}

	return clamp(score, 0, maxServices), issues
}
