package collector

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/telemetry"
)

func (c *Collector) collectCPU(ctx context.Context) (*telemetry.CPU, error) {
	errFactory := errors.New()

	usage, err := c.sources.cpuPercent(ctx, c.cfg.CPUSample, false)
	if err != nil {
		return nil, errFactory.Wrap(ErrCPUFailed, err)
	}

	out := &telemetry.CPU{}
	if len(usage) > 0 {
		out.UsagePercent = telemetry.Float(round2(usage[0]))
	}

	if n, err := c.sources.cpuCounts(ctx, false); err == nil && n > 0 {
		out.CoresPhysical = telemetry.Int(n)
	}
	if n, err := c.sources.cpuCounts(ctx, true); err == nil && n > 0 {
		out.CoresLogical = telemetry.Int(n)
	}

	if info, err := c.sources.cpuInfo(ctx); err == nil && len(info) > 0 {
		out.Model = info[0].ModelName
		if info[0].Mhz > 0 {
			out.FrequencyMaxMHz = telemetry.Float(round2(info[0].Mhz))
		}
	}

	if mhz, ok := currentFrequencyMHz(c.cfg.SysfsRoot); ok {
		out.FrequencyMHz = telemetry.Float(round2(mhz))
	} else if out.FrequencyMaxMHz != nil {
		out.FrequencyMHz = telemetry.Float(*out.FrequencyMaxMHz)
	}

	if avg, err := c.sources.loadAvg(ctx); err == nil && avg != nil {
		out.LoadAvg = &telemetry.LoadAvg{
			One:     round2(avg.Load1),
			Five:    round2(avg.Load5),
			Fifteen: round2(avg.Load15),
		}
	}

	return out, nil
}

// currentFrequencyMHz averages scaling_cur_freq (kHz) over all cpufreq policies.
func currentFrequencyMHz(sysfsRoot string) (float64, bool) {
	paths, err := filepath.Glob(filepath.Join(sysfsRoot, "devices", "system", "cpu", "cpu[0-9]*", "cpufreq", "scaling_cur_freq"))
	if err != nil || len(paths) == 0 {
		return 0, false
	}

	var sum float64
	var n int
	for _, p := range paths {
		s, ok := readTrimmed(p)
		if !ok {
			continue
		}
		khz, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		sum += khz / 1000
		n++
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

func readTrimmed(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	return strings.TrimSpace(string(data)), true
}
