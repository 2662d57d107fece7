package libneuro

import "math/rand"

// defaultSeed is used when a config leaves Seed as 0 so runs stay reproducible.
const defaultSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand (seed 0 selects defaultSeed).
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream ID (SplitMix64 finalizer) so that
// the chain and its store draw from uncorrelated streams.
func deriveSeed(parent int64, stream uint64) int64 {
	if parent == 0 {
		parent = defaultSeed
	}
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
