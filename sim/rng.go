package sim

import (
	"hash/fnv"
	"math/rand"
)

// partitionedRNG provides isolated RNG streams per subsystem so one
// subsystem's draw count can change without perturbing another's sequence.
// Subsystem seeds are derived from the master seed by name hash, which makes
// derivation order-independent.
type partitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// Subsystem names. Hold-room tie-breaking draws happen once at construction
// (and on reseed); jitter draws happen per spawned passenger in spawn order.
const (
	subsystemHoldRooms = "holdrooms"
	subsystemJitter    = "jitter"
)

func newPartitionedRNG(masterSeed int64) *partitionedRNG {
	return &partitionedRNG{
		masterSeed: masterSeed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// forSubsystem returns the RNG stream for the named subsystem, creating it
// deterministically on first use.
func (p *partitionedRNG) forSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// deriveSeed combines the master seed with a hash of the subsystem name.
func (p *partitionedRNG) deriveSeed(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return p.masterSeed ^ int64(h.Sum64())
}
