package collector

import (
	"path/filepath"
	"sort"
	"strconv"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/distatus/battery"
)

// collectBattery reports the first battery the system exposes. A machine
// without one reports Present=false.
func (c *Collector) collectBattery() (*telemetry.Battery, error) {
	errFactory := errors.New()

	bats, err := c.sources.batteries()
	b, partial, ok := firstBattery(bats, err)
	if !ok {
		if err != nil {
			return &telemetry.Battery{Present: false}, errFactory.Wrap(ErrBatteryFailed, err)
		}
		return &telemetry.Battery{Present: false}, nil
	}

	out := &telemetry.Battery{Present: true}

	// Capacities are in mWh and the rate in mW.
	if partial.Current == nil && partial.Full == nil && b.Full > 0 {
		out.Percent = round2(b.Current / b.Full * 100)
	}

	if partial.Full == nil && partial.Design == nil && b.Design > 0 {
		health := round2(b.Full / b.Design * 100)
		out.HealthPercent = telemetry.Float(health)
		out.WearPercent = telemetry.Float(round2(100 - health))
	}

	state := battery.Unknown
	if partial.State == nil {
		state = b.State.Raw
	}
	out.Plugged = state == battery.Charging || state == battery.Full || state == battery.Idle

	if state == battery.Discharging && partial.Current == nil && partial.ChargeRate == nil && b.ChargeRate > 0 {
		out.TimeLeftMinutes = telemetry.Int(int(b.Current / b.ChargeRate * 60))
	}

	out.CycleCount = cycleCount(filepath.Join(c.cfg.SysfsRoot, "class", "power_supply"))

	return out, nil
}

// firstBattery returns the first battery that was read, together with the
// per-field errors the library reported for it.
func firstBattery(bats []*battery.Battery, err error) (*battery.Battery, battery.ErrPartial, bool) {
	var errs battery.Errors
	perBattery := errors.As(err, &errs)

	for i, b := range bats {
		if b == nil {
			continue
		}
		if !perBattery || i >= len(errs) || errs[i] == nil {
			return b, battery.ErrPartial{}, true
		}

		switch e := errs[i].(type) {
		case battery.ErrPartial:
			return b, e, true
		case *battery.ErrPartial:
			return b, *e, true
		}
	}

	return nil, battery.ErrPartial{}, false
}

// cycleCount reads cycle_count of the first BAT* supply, which the battery
// library does not expose.
func cycleCount(base string) *int {
	dirs, err := filepath.Glob(filepath.Join(base, "BAT*"))
	if err != nil || len(dirs) == 0 {
		return nil
	}
	sort.Strings(dirs)

	s, ok := readTrimmed(filepath.Join(dirs[0], "cycle_count"))
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}

	return telemetry.Int(n)
}
