// Package gpu reads GPU state: NVIDIA devices through NVML and Intel
// integrated graphics through DRM sysfs.
package gpu

import (
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// NvidiaReader reports the state of the first NVIDIA device.
type NvidiaReader interface {
	Read() (*telemetry.NvidiaGPU, error)
	Close() error
}

// IntelReader reports the state of the Intel iGPU, or nil when there is none.
type IntelReader interface {
	Read() (*telemetry.IntelGPU, error)
}

// device is the subset of nvml.Device used for readings.
type device interface {
	GetName() (string, nvml.Return)
	GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
	GetMemoryInfo() (nvml.Memory, nvml.Return)
	GetPowerState() (nvml.Pstates, nvml.Return)
}
