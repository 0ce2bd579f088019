package collector

import "codeberg.org/mutker/healthctl/internal/errors"

const (
	ErrCPUFailed      = errors.ErrorCode("collector_cpu_failed")
	ErrMemoryFailed   = errors.ErrorCode("collector_memory_failed")
	ErrSensorsFailed  = errors.ErrorCode("collector_sensors_failed")
	ErrBatteryFailed  = errors.ErrorCode("collector_battery_failed")
	ErrServicesFailed = errors.ErrorCode("collector_services_failed")
)
