// Package sim provides the core discrete-event simulation kernel for the
// airport departure pipeline: terminal arrival, ticketing, security
// checkpoint, and hold-room boarding.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - flight.go / passenger.go: the data model and the stamp table
//   - engine.go: engine construction, configuration setters, and the read API
//   - interval.go: SimulateInterval, the second-resolution pipeline scheduler
//
// # Architecture
//
// The engine advances in fixed intervals of IntervalMinutes×60 seconds.
// Each interval spawns the minute arrival buckets that fall inside the
// window, then sweeps the window one second at a time in a fixed sub-phase
// order: flight close events, departures, arrivals to ticket, arrivals to
// checkpoint, arrivals to hold, ticket service, checkpoint service.
// At every interval boundary the full kernel state is deep-copied into an
// append-only snapshot log (snapshot.go), which is what makes rewind and
// fast-forward deterministic.
//
// Supporting pieces:
//   - arrivals.go: deterministic per-minute arrival curves (legacy centered
//     Gaussian and edited split Gaussian)
//   - router.go: time-backlog checkpoint lane selection
//   - travel.go: node-to-node walking legs with provider override
//   - lifecycle.go: boarding-close miss marking and departure clearing
//   - sim/trace/: per-interval trace records and the compressed writer
//
// The kernel is single-threaded cooperative: all state transitions happen
// inside SimulateInterval, and external readers observe state only through
// snapshot-backed accessors.
package sim
