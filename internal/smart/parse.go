package smart

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	passMarker = "PASSED"
	failMarker = "FAILED"

	// NVMe reports data units of 1000 512-byte blocks.
	bytesPerDataUnit = 512_000
	bytesPerTB       = 1 << 40
)

type field struct {
	pattern *regexp.Regexp
	base    int
	assign  func(*StorageHealth, int64)
}

var fields = []field{
	{regexp.MustCompile(`Percentage Used:\s+(\d+)%`), 10, func(h *StorageHealth, v int64) { h.WearPercent = intPtr(v) }},
	{regexp.MustCompile(`Available Spare:\s+(\d+)%`), 10, func(h *StorageHealth, v int64) { h.AvailableSpare = intPtr(v) }},
	{regexp.MustCompile(`Available Spare Threshold:\s+(\d+)%`), 10, func(h *StorageHealth, v int64) { h.SpareThreshold = intPtr(v) }},
	{regexp.MustCompile(`Power On Hours:\s+([\d,]+)`), 10, func(h *StorageHealth, v int64) { h.PowerOnHours = &v }},
	{regexp.MustCompile(`Power Cycles:\s+([\d,]+)`), 10, func(h *StorageHealth, v int64) { h.PowerCycles = &v }},
	{regexp.MustCompile(`Unsafe Shutdowns:\s+([\d,]+)`), 10, func(h *StorageHealth, v int64) { h.UnsafeShutdowns = &v }},
	{regexp.MustCompile(`Media and Data Integrity Errors:\s+(\d+)`), 10, func(h *StorageHealth, v int64) { h.MediaErrors = &v }},
	{regexp.MustCompile(`Critical Warning:\s+0x([0-9a-fA-F]+)`), 16, func(h *StorageHealth, v int64) { h.CriticalWarning = &v }},
	{regexp.MustCompile(`Temperature:\s+(\d+)\s+Celsius`), 10, func(h *StorageHealth, v int64) { h.TemperatureC = intPtr(v) }},
}

var (
	dataWrittenPattern = regexp.MustCompile(`Data Units Written:\s+([\d,]+)`)
	dataReadPattern    = regexp.MustCompile(`Data Units Read:\s+([\d,]+)`)
)

// Parse extracts a StorageHealth record from `smartctl -a` output.
// Empty output means the tool produced nothing and yields HealthError with
// every other field nil.
func Parse(output string) StorageHealth {
	if output == "" {
		return StorageHealth{Health: HealthError}
	}

	h := StorageHealth{Health: HealthUnknown}
	switch {
	case strings.Contains(output, passMarker):
		h.Health = HealthPassed
	case strings.Contains(output, failMarker):
		h.Health = HealthFailed
	}

	for _, f := range fields {
		if v, ok := extract(output, f.pattern, f.base); ok {
			f.assign(&h, v)
		}
	}

	h.DataWrittenTB = dataUnitsTB(output, dataWrittenPattern)
	h.DataReadTB = dataUnitsTB(output, dataReadPattern)

	return h
}

// extract returns the first capture of pattern converted in the given base.
func extract(output string, pattern *regexp.Regexp, base int) (int64, bool) {
	m := pattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), base, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func dataUnitsTB(output string, pattern *regexp.Regexp) *float64 {
	units, ok := extract(output, pattern, 10)
	if !ok {
		return nil
	}

	tb := float64(units) * bytesPerDataUnit / bytesPerTB
	tb = math.Round(tb*100) / 100

	return &tb
}

func intPtr(v int64) *int {
	i := int(v)
	return &i
}
