// flightsim is a host-side simulator for the flight-control scheduler: it
// wires a Registry and Scheduler against simulated gyro/filter/PID/telemetry/
// blackbox task bodies and drives Tick in a loop, the way firmware would
// drive it from a hardware timer interrupt. Grounded in the teacher's
// reference/main.go entry-point shape (command line flags for config file
// and tick interval, init()-time wiring, signal-driven shutdown).

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgp59/logrusx"

	flightsched "github.com/flightsched/flightsched-go"
	flightsched_internal "github.com/flightsched/flightsched-go/internal"
)

const defaultInstance = "flightsim"

var mainLog = flightsched.NewCompLogger(defaultInstance)

var configFlag = flag.String(
	"config",
	fmt.Sprintf("%s-config.yaml", defaultInstance),
	flightsched.FormatFlagUsage(`
		Path to the YAML config file. Optional: every setting has a
		compiled-in default, so the simulator runs without one.
	`),
)

var tickIntervalFlag = flag.Duration(
	"tick-interval",
	time.Millisecond,
	flightsched.FormatFlagUsage(`
		Wall-clock interval between Tick() invocations. Real firmware
		ties this to a hardware timer; the simulator uses a Go ticker
		instead.
	`),
)

func init() {
	flightsched.AddCallerSrcPathPrefixToLogger(2) // this file is at cmd/flightsim
	// Register --log-level/--log-file/... flags that override LoggerConfig
	// after it's loaded from the config file, same as the teacher's runner.
	logrusx.EnableLoggerArgs()
}

func main() {
	flag.Parse()

	tasksConfig := defaultTasksConfig()
	schedulerConfig, err := flightsched.LoadConfig(*configFlag, tasksConfig, nil)
	if err != nil && !os.IsNotExist(err) {
		mainLog.Fatalf("config: %v", err)
	}
	if schedulerConfig == nil {
		schedulerConfig = flightsched.DefaultSchedulerConfig()
	}

	// Command line flags take precedence over the config file's log_config
	// section, exactly as the teacher's runner.Run applies them.
	logrusx.ApplySetLoggerArgs(schedulerConfig.LoggerConfig)

	if err := flightsched.SetLogger(schedulerConfig.LoggerConfig); err != nil {
		mainLog.Fatalf("logger: %v", err)
	}

	if tck, err := flightsched_internal.GetSysClktck(); err == nil {
		mainLog.Infof("host clock tick rate: %d Hz (informational only; the simulated clock is free-running)", tck)
	}

	var trace flightsched.DebugTraceSink = flightsched.NoopDebugTraceSink{}
	if schedulerConfig.DebugTraceConfig.Enable {
		sink, err := flightsched.NewRingBufferDebugTraceSink(schedulerConfig.DebugTraceConfig.BufferSize, 4)
		if err != nil {
			mainLog.Fatalf("debug trace: %v", err)
		}
		trace = sink
	}

	registry := flightsched.NewRegistry(16, schedulerConfig)
	sim := newSimulatedCraft(tasksConfig)

	gyroID := registry.Register("gyro", flightsched.PriorityRealtime, 1000, sim.gyroUpdate, nil)
	filterID := registry.Register("filter", flightsched.PriorityRealtime, 1000, sim.filterUpdate, nil)
	pidID := registry.Register("pid", flightsched.PriorityRealtime, 1000, sim.pidUpdate, nil)
	systemID := registry.Register("system", flightsched.PriorityIdle, 100000, func(now uint32) {
		registry.TaskSystemLoad(now)
	}, nil)
	telemetryID := registry.Register(
		"telemetry", flightsched.PriorityLow,
		uint32(time.Second/time.Duration(tasksConfig.Telemetry.RateHz)/time.Microsecond),
		sim.telemetryTick, nil,
	)
	blackboxID := registry.Register(
		"blackbox", flightsched.PriorityMedium,
		uint32(time.Second/time.Duration(tasksConfig.Blackbox.RateHz)/time.Microsecond),
		sim.blackboxTick, nil,
	)
	armingID := registry.Register("arming-check", flightsched.PriorityHigh, 5000, sim.armingStateChanged, sim.armingCheckFunc)

	registry.Init(systemID)
	registry.SetEnabled(telemetryID, true)
	registry.SetEnabled(blackboxID, true)
	registry.SetEnabled(armingID, true)

	clock := flightsched.NewRealClock()
	scheduler := flightsched.NewScheduler(clock, registry, trace, gyroID, filterID, pidID, schedulerConfig)
	scheduler.EnableGyro()
	scheduler.SetRealtimeReadyFuncs(sim.gyroFilterReady, sim.pidLoopReady)

	mainLog.Infof("starting scheduler loop, tick interval %s", *tickIntervalFlag)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(*tickIntervalFlag)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			scheduler.Tick()
		case sig := <-sigCh:
			mainLog.Infof("received %s, shutting down", sig)
			info := registry.GetTaskInfo(gyroID)
			mainLog.Infof("gyro task: avg execution %dus, max %dus", info.AverageExecutionTime, info.MaxExecutionTime)
			os.Exit(0)
		}
	}
}
