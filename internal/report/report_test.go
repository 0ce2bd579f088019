package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"codeberg.org/mutker/healthctl/internal/health"
	"codeberg.org/mutker/healthctl/internal/smart"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *telemetry.Snapshot {
	written := 12.5
	hours := int64(12345)
	unsafe := int64(87)

	return &telemetry.Snapshot{
		CPU: &telemetry.CPU{
			UsagePercent:  telemetry.Float(12.5),
			CoresPhysical: telemetry.Int(8),
			CoresLogical:  telemetry.Int(16),
			FrequencyMHz:  telemetry.Float(2400),
			LoadAvg:       &telemetry.LoadAvg{One: 1.5, Five: 1, Fifteen: 0.5},
		},
		Memory: &telemetry.Memory{
			RAM:  telemetry.RAM{Percent: telemetry.Float(40), UsedGB: 6.4, TotalGB: 16},
			Swap: telemetry.Swap{Percent: telemetry.Float(0)},
		},
		Temps: telemetry.Temperatures{
			telemetry.SensorCPU:  {Current: 55},
			telemetry.SensorNVMe: {Current: 41},
		},
		Storage: &smart.StorageHealth{
			Health:          smart.HealthPassed,
			WearPercent:     telemetry.Int(3),
			DataWrittenTB:   &written,
			PowerOnHours:    &hours,
			UnsafeShutdowns: &unsafe,
		},
		Services: 2,
	}
}

func TestTable(t *testing.T) {
	s := testSnapshot()
	res := health.Evaluate(s)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, s, res))
	out := buf.String()

	assert.Contains(t, out, "Usage: 12.5% | Cores: 8P/16L | Freq: 2400 MHz | Load: 1.5 1 0.5")
	assert.Contains(t, out, "RAM 40% (6.4/16 GB) | Swap 0%")
	assert.Contains(t, out, "Health: PASSED | Wear: 3% | TBW: 12.5 TB | POH: 12,345 h | Unsafe: 87 | Temp: 41°C")
	assert.Contains(t, out, "Not detected")
	assert.Contains(t, out, "No discrete GPU active")
	assert.Contains(t, out, "Overall Health Score: 96/100 (healthy)")
	assert.Contains(t, out, "2 failed system services")
}

func TestTableHealthy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, nil, health.Evaluate(nil)))

	out := buf.String()
	assert.Contains(t, out, "Overall Health Score: 100/100 (healthy)")
	assert.Contains(t, out, "System is healthy ✔")
	assert.Contains(t, out, "CPU")
	assert.Equal(t, 3, strings.Count(out, notAvail))
}

func TestGPURow(t *testing.T) {
	tests := []struct {
		name string
		gpu  *telemetry.GPU
		want row
	}{
		{"none", nil, row{"GPU", "No discrete GPU active"}},
		{"intel only", &telemetry.GPU{Intel: &telemetry.IntelGPU{Card: "card0"}}, row{"GPU", "Intel iGPU (Optimus, power-saving)"}},
		{
			"nvidia",
			&telemetry.GPU{Nvidia: &telemetry.NvidiaGPU{Temperature: 61, VRAMUsedMB: 512, VRAMTotalMB: 6144, PowerState: "P8"}},
			row{"NVIDIA GPU", "61°C | VRAM 512/6144 MB | P8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gpuRow(tt.gpu))
		})
	}
}

func TestBatteryDetails(t *testing.T) {
	assert.Equal(t, "Not detected", batteryDetails(&telemetry.Battery{Present: false}))

	b := &telemetry.Battery{Present: true, Percent: 81, WearPercent: telemetry.Float(12.3), CycleCount: telemetry.Int(312)}
	assert.Equal(t, "81% | Wear 12.3% | Cycles 312", batteryDetails(b))
}

func TestJSON(t *testing.T) {
	s := testSnapshot()
	res := health.Evaluate(s)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, s, res))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, float64(96), doc["score"])
	assert.Equal(t, "healthy", doc["status"])
	assert.Equal(t, []any{"2 failed system services"}, doc["issues"])
	assert.Len(t, doc["categories"], 6)

	tel, ok := doc["telemetry"].(map[string]any)
	require.True(t, ok)
	ssd, ok := tel["ssd"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PASSED", ssd["health"])
}

func TestJSONEmptyIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil, health.Evaluate(nil)))
	assert.Contains(t, buf.String(), `"issues": []`)
}
