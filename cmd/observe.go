package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/terminal-sim/terminal-sim/sim"
)

// logOutcomes prints the per-flight summary the way operators read it:
// planned vs boarded vs missed.
func logOutcomes(e *sim.Engine) {
	for _, o := range e.FlightOutcomes() {
		logrus.Infof("flight %s: planned=%d spawned=%d departed=%d in_hold=%d missed=%d",
			o.Flight.Number, o.Planned, o.Spawned, o.Departed, o.InHoldRoom, o.MissedPurged)
	}
}

// logWarnings surfaces any configuration clamps the engine applied.
func logWarnings(e *sim.Engine) {
	for _, w := range e.Warnings() {
		logrus.Warnf("configuration adjusted: %s", w)
	}
}
