//go:build unix

package flightsched_internal

import (
	"github.com/tklauser/go-sysconf"
)

// GetSysClktck reports the host kernel's clock tick rate. The scheduler core
// itself never consults this — cmd/flightsim uses it once at startup to log
// the host timer resolution the simulator is running under, since unlike
// real firmware it inherits the host's scheduling jitter rather than a fixed
// hardware timer.
func GetSysClktck() (int64, error) {
	return sysconf.Sysconf(sysconf.SC_CLK_TCK)
}
