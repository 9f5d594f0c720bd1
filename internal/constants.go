package flightsched_internal

// Fixed API constants named in spec §6. These are load-bearing invariants,
// not tunables, so unlike GyroTaskGuardIntervalUs/TaskStatsMovingSumCount
// (config.go) they are compiled constants, matching the original C source's
// #define's.
const (
	// SchedulerDelayLimitUs is the floor for desiredPeriod: 100us (10kHz) to
	// prevent scheduler clogging.
	SchedulerDelayLimitUs uint32 = 100

	// TaskAverageExecuteFallbackUs is the default assumed task execution
	// time used for admission when statistics are disabled.
	TaskAverageExecuteFallbackUs uint32 = 30

	// TaskAverageExecutePaddingUs is added to the measured average
	// execution time before the admission test.
	TaskAverageExecutePaddingUs uint32 = 5
)
