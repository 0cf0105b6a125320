package exposure

import "math/rand"

// keyedSource returns a pseudo-random source seeded from (scenario seed,
// agent ID, day) via a splitmix64 mix. Two agents, or the same agent on two
// days, get independent streams; the same key always yields the same
// stream, so parallel evaluation order cannot change outcomes.
func keyedSource(seed int64, agentID, day uint64) *rand.Rand {
	h := uint64(seed)
	h = splitmix64(h ^ agentID)
	h = splitmix64(h ^ (day + 0x9e3779b97f4a7c15))
	return rand.New(rand.NewSource(int64(h)))
}

// splitmix64 is the finalizer from the SplitMix64 generator, used here as a
// cheap avalanche mix for key derivation.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
