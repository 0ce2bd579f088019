package collector

import (
	"context"
	"strings"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/shirou/gopsutil/v4/sensors"
)

type sensorRule struct {
	name      string
	prefixes  []string
	preferred []string
}

// Sensor keys look like "<hwmon name>_<label>", e.g. "coretemp_packageid0",
// "k10temp_tctl" or "nvme_composite".
var sensorRules = []sensorRule{
	{telemetry.SensorCPU, []string{"coretemp", "k10temp", "zenpower", "cpu_thermal", "cpu"}, []string{"package", "tctl", "tdie"}},
	{telemetry.SensorNVMe, []string{"nvme"}, []string{"composite"}},
}

func (c *Collector) collectTemperatures(ctx context.Context) (telemetry.Temperatures, error) {
	errFactory := errors.New()

	stats, err := c.sources.temperatures(ctx)
	// gopsutil reports unreadable sensors as warnings next to the good ones
	if err != nil && len(stats) == 0 {
		return telemetry.Temperatures{}, errFactory.Wrap(ErrSensorsFailed, err)
	}

	return classifyTemperatures(stats), nil
}

func classifyTemperatures(stats []sensors.TemperatureStat) telemetry.Temperatures {
	out := telemetry.Temperatures{}

	for _, rule := range sensorRules {
		if t, ok := pickSensor(stats, rule); ok {
			out[rule.name] = telemetry.Temperature{Current: t}
		}
	}

	return out
}

func pickSensor(stats []sensors.TemperatureStat, rule sensorRule) (float64, bool) {
	var fallback float64
	found := false

	for _, s := range stats {
		key := strings.ToLower(s.SensorKey)
		if s.Temperature <= 0 || !hasAnyPrefix(key, rule.prefixes) {
			continue
		}
		for _, p := range rule.preferred {
			if strings.Contains(key, p) {
				return s.Temperature, true
			}
		}
		if !found {
			fallback = s.Temperature
			found = true
		}
	}

	return fallback, found
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}

	return false
}
