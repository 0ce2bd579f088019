package collector

import (
	"context"
	"math"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/telemetry"
)

const bytesPerGiB = 1 << 30

func (c *Collector) collectMemory(ctx context.Context) (*telemetry.Memory, error) {
	errFactory := errors.New()

	vm, err := c.sources.virtualMemory(ctx)
	if err != nil {
		return nil, errFactory.Wrap(ErrMemoryFailed, err)
	}

	out := &telemetry.Memory{
		RAM: telemetry.RAM{
			Percent:     telemetry.Float(round2(vm.UsedPercent)),
			UsedGB:      gib(vm.Used),
			TotalGB:     gib(vm.Total),
			AvailableGB: gib(vm.Available),
		},
	}

	// A machine without swap still has a meaningful RAM reading.
	if sw, err := c.sources.swapMemory(ctx); err == nil && sw != nil {
		out.Swap = telemetry.Swap{
			Percent: telemetry.Float(round2(sw.UsedPercent)),
			UsedGB:  gib(sw.Used),
			TotalGB: gib(sw.Total),
		}
	}

	return out, nil
}

func gib(b uint64) float64 {
	return round2(float64(b) / bytesPerGiB)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
