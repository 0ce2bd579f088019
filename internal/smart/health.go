// Package smart turns smartctl text output into a StorageHealth record.
package smart

// Health is the overall SMART self-assessment verdict.
type Health string

const (
	HealthPassed  Health = "PASSED"
	HealthFailed  Health = "FAILED"
	HealthError   Health = "ERROR"
	HealthUnknown Health = "UNKNOWN"
)

// StorageHealth holds the fields extracted from a single smartctl run.
// Every numeric field is independently optional; nil means the label was not
// present or its value did not parse.
type StorageHealth struct {
	Health          Health   `json:"health"`
	WearPercent     *int     `json:"wear_percent"`
	AvailableSpare  *int     `json:"available_spare"`
	SpareThreshold  *int     `json:"spare_threshold"`
	DataWrittenTB   *float64 `json:"data_written_tb"`
	DataReadTB      *float64 `json:"data_read_tb"`
	PowerOnHours    *int64   `json:"power_on_hours"`
	PowerCycles     *int64   `json:"power_cycles"`
	UnsafeShutdowns *int64   `json:"unsafe_shutdowns"`
	MediaErrors     *int64   `json:"media_errors"`
	CriticalWarning *int64   `json:"critical_warning"`
	TemperatureC    *int     `json:"temperature_c"`
}
