// Package telemetry defines the snapshot handed from the collectors to the
// health engine. A nil pointer always means "no reading".
package telemetry

import (
	"time"

	"codeberg.org/mutker/healthctl/internal/smart"
)

// Snapshot is one evaluation cycle's worth of telemetry. It is built once by
// the collectors and treated as read-only afterwards.
type Snapshot struct {
	CollectedAt time.Time            `json:"collected_at"`
	CPU         *CPU                 `json:"cpu"`
	Memory      *Memory              `json:"memory"`
	Temps       Temperatures         `json:"temps"`
	Storage     *smart.StorageHealth `json:"ssd"`
	Battery     *Battery             `json:"battery"`
	GPU         *GPU                 `json:"gpu"`
	Services    int                  `json:"services"`
}

type CPU struct {
	Model           string   `json:"model,omitempty"`
	UsagePercent    *float64 `json:"usage_percent"`
	CoresPhysical   *int     `json:"cores_physical"`
	CoresLogical    *int     `json:"cores_logical"`
	FrequencyMHz    *float64 `json:"frequency_mhz"`
	FrequencyMaxMHz *float64 `json:"frequency_max_mhz"`
	LoadAvg         *LoadAvg `json:"load_avg"`
}

type LoadAvg struct {
	One     float64 `json:"1min"`
	Five    float64 `json:"5min"`
	Fifteen float64 `json:"15min"`
}

type Memory struct {
	RAM  RAM  `json:"ram"`
	Swap Swap `json:"swap"`
}

type RAM struct {
	Percent     *float64 `json:"percent"`
	UsedGB      float64  `json:"used_gb"`
	TotalGB     float64  `json:"total_gb"`
	AvailableGB float64  `json:"available_gb"`
}

type Swap struct {
	Percent *float64 `json:"percent"`
	UsedGB  float64  `json:"used_gb"`
	TotalGB float64  `json:"total_gb"`
}

// Sensor names used as Temperatures keys.
const (
	SensorCPU  = "cpu"
	SensorNVMe = "nvme"
)

type Temperature struct {
	Current float64 `json:"current"`
}

// Temperatures maps a sensor name to its reading.
type Temperatures map[string]Temperature

// Get returns the reading for name and whether one exists. Safe on a nil map.
func (t Temperatures) Get(name string) (float64, bool) {
	r, ok := t[name]
	return r.Current, ok
}

type Battery struct {
	Present         bool     `json:"present"`
	Percent         float64  `json:"percent"`
	Plugged         bool     `json:"plugged"`
	TimeLeftMinutes *int     `json:"time_left_min"`
	HealthPercent   *float64 `json:"health_percent"`
	WearPercent     *float64 `json:"wear_percent"`
	CycleCount      *int     `json:"cycle_count"`
}

type GPU struct {
	Nvidia *NvidiaGPU `json:"nvidia"`
	Intel  *IntelGPU  `json:"intel"`
}

type NvidiaGPU struct {
	Name        string `json:"name"`
	Temperature int    `json:"temperature"`
	Utilization int    `json:"utilization"`
	VRAMUsedMB  int    `json:"vram_used_mb"`
	VRAMTotalMB int    `json:"vram_total_mb"`
	PowerState  string `json:"power_state"`
}

type IntelGPU struct {
	Card            string `json:"card"`
	FrequencyMHz    *int   `json:"frequency_mhz"`
	MaxFrequencyMHz *int   `json:"max_frequency_mhz"`
}

// Float returns a pointer to v, for building optional readings.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for building optional readings.
func Int(v int) *int {
	return &v
}
