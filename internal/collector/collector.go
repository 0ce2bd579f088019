// Package collector gathers a telemetry.Snapshot from the local machine.
// Each category is collected independently; a failing source leaves its
// category empty instead of failing the whole snapshot.
package collector

import (
	"context"
	"path/filepath"
	"time"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/gpu"
	"codeberg.org/mutker/healthctl/internal/logger"
	"codeberg.org/mutker/healthctl/internal/smart"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"
)

const (
	DefaultSysfsRoot = "/sys"
	DefaultCPUSample = time.Second
)

type Config struct {
	Smart      smart.Config
	CPUSample  time.Duration
	SysfsRoot  string
	DisableGPU bool
}

func DefaultConfig() Config {
	return Config{
		Smart:     smart.DefaultConfig(),
		CPUSample: DefaultCPUSample,
		SysfsRoot: DefaultSysfsRoot,
	}
}

// sources are the gopsutil and battery entry points, swappable in tests.
type sources struct {
	cpuPercent    func(context.Context, time.Duration, bool) ([]float64, error)
	cpuCounts     func(context.Context, bool) (int, error)
	cpuInfo       func(context.Context) ([]cpu.InfoStat, error)
	loadAvg       func(context.Context) (*load.AvgStat, error)
	virtualMemory func(context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(context.Context) (*mem.SwapMemoryStat, error)
	temperatures  func(context.Context) ([]sensors.TemperatureStat, error)
	batteries     func() ([]*battery.Battery, error)
}

func defaultSources() sources {
	return sources{
		cpuPercent:    cpu.PercentWithContext,
		cpuCounts:     cpu.CountsWithContext,
		cpuInfo:       cpu.InfoWithContext,
		loadAvg:       load.AvgWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		temperatures:  sensors.TemperaturesWithContext,
		batteries:     battery.GetAll,
	}
}

type Collector struct {
	cfg       Config
	sources   sources
	run       smart.Runner
	smart     *smart.Reader
	intel     gpu.IntelReader
	nvidia    gpu.NvidiaReader
	newNvidia func() (gpu.NvidiaReader, error)
}

func New(cfg Config) *Collector {
	return newCollector(cfg, defaultSources(), smart.ExecRunner, gpu.NewNvidiaReader)
}

func newCollector(
	cfg Config, p sources, run smart.Runner, newNvidia func() (gpu.NvidiaReader, error),
) *Collector {
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = DefaultSysfsRoot
	}
	if cfg.CPUSample < 0 {
		cfg.CPUSample = 0
	}

	return &Collector{
		cfg:       cfg,
		sources:   p,
		run:       run,
		smart:     smart.NewReaderWithRunner(cfg.Smart, run),
		intel:     gpu.NewIntelReader(filepath.Join(cfg.SysfsRoot, "class", "drm")),
		newNvidia: newNvidia,
	}
}

// Collect builds a fresh snapshot. It never fails; categories whose source is
// unavailable are left nil and scored as not applicable.
func (c *Collector) Collect(ctx context.Context) *telemetry.Snapshot {
	s := &telemetry.Snapshot{CollectedAt: time.Now()}

	var err error
	if s.CPU, err = c.collectCPU(ctx); err != nil {
		logFailure(err, "cpu")
	}
	if s.Memory, err = c.collectMemory(ctx); err != nil {
		logFailure(err, "memory")
	}
	if s.Temps, err = c.collectTemperatures(ctx); err != nil {
		logFailure(err, "temperatures")
	}

	storage := c.smart.Read(ctx)
	s.Storage = &storage

	if s.Battery, err = c.collectBattery(); err != nil {
		logFailure(err, "battery")
	}

	s.GPU = c.collectGPU()

	if s.Services, err = c.collectServices(ctx); err != nil {
		logFailure(err, "services")
	}

	return s
}

func (c *Collector) collectGPU() *telemetry.GPU {
	out := &telemetry.GPU{}

	intel, err := c.intel.Read()
	if err != nil {
		logFailure(err, "intel_gpu")
	}
	out.Intel = intel

	if c.cfg.DisableGPU {
		return out
	}

	// The discrete GPU may be powered down (Optimus); retry every cycle.
	if c.nvidia == nil {
		r, err := c.newNvidia()
		if err != nil {
			logger.Debug().Err(err).Msg("NVIDIA GPU not available")
			return out
		}
		c.nvidia = r
	}

	nv, err := c.nvidia.Read()
	if err != nil {
		logFailure(err, "nvidia_gpu")
		return out
	}
	out.Nvidia = nv

	return out
}

// Close releases NVML if it was initialized.
func (c *Collector) Close() error {
	if c.nvidia == nil {
		return nil
	}

	err := c.nvidia.Close()
	c.nvidia = nil

	return err
}

func logFailure(err error, source string) {
	logger.Debug().
		Str("source", source).
		Str("error_code", string(errors.CodeOf(err))).
		Err(err).
		Msg("telemetry source unavailable")
}
