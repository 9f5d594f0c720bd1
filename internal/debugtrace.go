// RingBufferDebugTraceSink: a bounded DebugTraceSink implementation for
// cmd/flightsim, so long simulator soak runs don't grow memory without
// bound. The buffer's capacity is configured as a human size string (e.g.
// "4KB") and parsed with the same library the teacher uses to parse its
// compressor batch target size (vmi/internal/compressor_pool.go,
// vmi/internal/stdout_metrics_queue.go: github.com/docker/go-units
// RAMInBytes); here the byte budget bounds retained trace samples instead of
// a metrics buffer, at DebugTraceSampleSize bytes/sample.

package flightsched_internal

import (
	"fmt"
	"sync"

	units "github.com/docker/go-units"
)

// DebugTraceSampleSize is the amortized per-sample cost used to translate a
// byte budget into a sample-count capacity: 4 channels x int32 value +
// bookkeeping.
const DebugTraceSampleSize = 32

// DebugTraceSample is one recorded (channel, slot, value) triple. No
// timestamp is kept with it; only the write order within a channel is
// retained.
type DebugTraceSample struct {
	Channel int
	Slot    int
	Value   int32
}

// RingBufferDebugTraceSink retains the most recent N samples per channel,
// where N is derived from a configured byte budget.
type RingBufferDebugTraceSink struct {
	mu       sync.Mutex
	capacity int
	samples  [][]DebugTraceSample // indexed by channel
	next     []int                // next write position per channel
	filled   []bool
}

// NewRingBufferDebugTraceSink parses sizeStr (e.g. "4KB", "64KiB") into a
// byte budget and derives a per-channel sample capacity from it. An empty
// sizeStr yields a capacity of 1 (enough to answer "most recent value").
func NewRingBufferDebugTraceSink(sizeStr string, numChannels int) (*RingBufferDebugTraceSink, error) {
	capacity := 1
	if sizeStr != "" {
		bytesBudget, err := units.RAMInBytes(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid debug trace buffer size %q: %w", sizeStr, err)
		}
		perChannel := int(bytesBudget) / (numChannels * DebugTraceSampleSize)
		if perChannel > 0 {
			capacity = perChannel
		}
	}
	sink := &RingBufferDebugTraceSink{
		capacity: capacity,
		samples:  make([][]DebugTraceSample, numChannels),
		next:     make([]int, numChannels),
		filled:   make([]bool, numChannels),
	}
	for ch := range sink.samples {
		sink.samples[ch] = make([]DebugTraceSample, capacity)
	}
	return sink, nil
}

func (s *RingBufferDebugTraceSink) Set(channel, slot int, value int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel < 0 || channel >= len(s.samples) {
		return
	}
	buf := s.samples[channel]
	i := s.next[channel]
	buf[i] = DebugTraceSample{Channel: channel, Slot: slot, Value: value}
	s.next[channel] = (i + 1) % len(buf)
	if s.next[channel] == 0 {
		s.filled[channel] = true
	}
}

// Recent returns the retained samples for channel, oldest first.
func (s *RingBufferDebugTraceSink) Recent(channel int) []DebugTraceSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel < 0 || channel >= len(s.samples) {
		return nil
	}
	buf := s.samples[channel]
	if !s.filled[channel] {
		out := make([]DebugTraceSample, s.next[channel])
		copy(out, buf[:s.next[channel]])
		return out
	}
	out := make([]DebugTraceSample, len(buf))
	n := copy(out, buf[s.next[channel]:])
	copy(out[n:], buf[:s.next[channel]])
	return out
}
