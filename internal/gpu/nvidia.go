package gpu

import (
	"fmt"
	"sync"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/logger"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const bytesPerMiB = 1024 * 1024

type nvidiaReader struct {
	ctl    nvmlController
	dev    device
	name   string
	mu     sync.Mutex
	closed bool
}

// NewNvidiaReader initializes NVML and binds to device 0. It fails when no
// driver or device is present, which callers treat as "no discrete GPU".
func NewNvidiaReader() (NvidiaReader, error) {
	r, err := newNvidiaReader(&nvmlWrapper{})
	if err != nil {
		return nil, err
	}

	return r, nil
}

func newNvidiaReader(ctl nvmlController) (*nvidiaReader, error) {
	errFactory := errors.New()

	if err := ctl.Initialize(); err != nil {
		return nil, err
	}

	count, err := ctl.GetDeviceCount()
	if err != nil {
		_ = ctl.Shutdown()
		return nil, err
	}
	if count == 0 {
		_ = ctl.Shutdown()
		return nil, errFactory.New(ErrDeviceNotFound)
	}

	// We'll use the first GPU (index 0)
	dev, err := ctl.GetDevice(0)
	if err != nil {
		_ = ctl.Shutdown()
		return nil, err
	}

	r := &nvidiaReader{ctl: ctl, dev: dev}
	if name, ret := dev.GetName(); IsNVMLSuccess(ret) {
		r.name = name
		logger.Info().Msgf("Detected GPU: %v", name)
	} else {
		logger.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	return r, nil
}

// Read samples temperature, utilization, memory and performance state.
// Only the temperature is mandatory; the rest default to zero values.
func (r *nvidiaReader) Read() (*telemetry.NvidiaGPU, error) {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errFactory.New(ErrNotInitialized)
	}

	temp, ret := r.dev.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	g := &telemetry.NvidiaGPU{
		Name:        r.name,
		Temperature: int(temp),
	}

	if util, ret := r.dev.GetUtilizationRates(); IsNVMLSuccess(ret) {
		g.Utilization = int(util.Gpu)
	} else {
		logger.Debug().Int("nvml_return", int(ret)).Msg("Failed to get GPU utilization")
	}

	if mem, ret := r.dev.GetMemoryInfo(); IsNVMLSuccess(ret) {
		g.VRAMUsedMB = int(mem.Used / bytesPerMiB)
		g.VRAMTotalMB = int(mem.Total / bytesPerMiB)
	} else {
		logger.Debug().Int("nvml_return", int(ret)).Msg("Failed to get GPU memory info")
	}

	if state, ret := r.dev.GetPowerState(); IsNVMLSuccess(ret) {
		g.PowerState = formatPowerState(state)
	}

	return g, nil
}

func (r *nvidiaReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	return r.ctl.Shutdown()
}

func formatPowerState(state nvml.Pstates) string {
	if state == nvml.PSTATE_UNKNOWN {
		return "Unknown"
	}

	return fmt.Sprintf("P%d", state)
}
