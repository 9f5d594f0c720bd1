// Simulated task bodies wired into the scheduler by main.go. None of this is
// normative: the scheduler core doesn't know or care what a "gyro" or a
// "blackbox" is, only that these are TaskFunc/CheckFunc values. The bodies
// here are illustrative stand-ins so the simulator exercises the realtime
// pipeline and the dynamic-priority machinery end to end.

package main

type telemetryTaskConfig struct {
	RateHz int      `yaml:"rate_hz"`
	Fields []string `yaml:"fields"`
}

type blackboxTaskConfig struct {
	RateHz int `yaml:"rate_hz"`
}

type tasksConfig struct {
	Telemetry *telemetryTaskConfig `yaml:"telemetry"`
	Blackbox  *blackboxTaskConfig  `yaml:"blackbox"`
}

func defaultTasksConfig() *tasksConfig {
	return &tasksConfig{
		Telemetry: &telemetryTaskConfig{RateHz: 10, Fields: []string{"roll", "pitch", "yaw"}},
		Blackbox:  &blackboxTaskConfig{RateHz: 50},
	}
}

// simulatedCraft holds the illustrative state the task bodies read and
// write: a stand-in for the sensor/estimator/actuator state real firmware
// would carry.
type simulatedCraft struct {
	cfg *tasksConfig

	gyroSampleCount uint64
	filterOutput    [3]float32
	pidOutput       [3]float32

	filterReady bool
	pidReady    bool

	armed        bool
	armingChecks int
}

func newSimulatedCraft(cfg *tasksConfig) *simulatedCraft {
	return &simulatedCraft{cfg: cfg}
}

// gyroUpdate stands in for reading the gyro sensor. It always runs every
// tick it's due, per the realtime pipeline's Phase A.
func (s *simulatedCraft) gyroUpdate(now uint32) {
	s.gyroSampleCount++
	// A new sample is always available for the filter immediately.
	s.filterReady = true
}

// filterUpdate stands in for the complementary/Kalman filter stage.
func (s *simulatedCraft) filterUpdate(now uint32) {
	for i := range s.filterOutput {
		s.filterOutput[i] = float32(s.gyroSampleCount % 1000)
	}
	s.filterReady = false
	s.pidReady = true
}

// pidUpdate stands in for the PID control loop driving the actuators.
func (s *simulatedCraft) pidUpdate(now uint32) {
	for i := range s.pidOutput {
		s.pidOutput[i] = s.filterOutput[i] * 0.1
	}
	s.pidReady = false
}

func (s *simulatedCraft) gyroFilterReady() bool { return s.filterReady }
func (s *simulatedCraft) pidLoopReady() bool    { return s.pidReady }

// telemetryTick stands in for a periodic downlink transmission.
func (s *simulatedCraft) telemetryTick(now uint32) {
	_ = s.cfg.Telemetry.Fields
}

// blackboxTick stands in for periodic onboard flight-data logging.
func (s *simulatedCraft) blackboxTick(now uint32) {
	_ = s.pidOutput
}

// armingCheckFunc is an event-driven predicate: the arming-check task only
// becomes ready when the simulated pre-arm conditions (here, a fixed sample
// count) first become satisfied, exercising the check-function path rather
// than pure time-driven scheduling.
func (s *simulatedCraft) armingCheckFunc(now, age uint32) bool {
	return !s.armed && s.gyroSampleCount > 2000
}

func (s *simulatedCraft) armingStateChanged(now uint32) {
	s.armed = true
	s.armingChecks++
}
