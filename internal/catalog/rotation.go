package catalog

import (
	"math"
	"time"
)

// legendaryThreshold is the per-hour chance that the rotation carries a
// legendary pet.
const legendaryThreshold = 0.30

// draw maps an integer seed to a deterministic value in [0,1) using
// frac(sin(seed)*10000). This is a low-quality hash, not a uniform RNG;
// the frontend computes the same hash, so changing it changes which pets
// appear each hour.
func draw(seed int) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}

// pick selects a pool entry by seed. Callers must validate pools at startup;
// the clamp only covers float rounding at the top of the range.
func pick(pool []Pet, seed int) Pet {
	index := int(draw(seed) * float64(len(pool)))
	if index >= len(pool) {
		index = len(pool) - 1
	}
	return pool[index]
}

// Rotation returns the shop catalog for the given hour of day (0-23).
// It is pure: repeated calls with the same hour return the same pets in
// the same order. The result always holds two common picks (independent,
// may repeat) and one rare pick, plus one legendary pick when the hour's
// legendary draw falls below the threshold.
func Rotation(pools Pools, hour int) []Pet {
	shop := make([]Pet, 0, 4)

	for i := 0; i < 2; i++ {
		shop = append(shop, pick(pools.Common, hour+i))
	}

	shop = append(shop, pick(pools.Rare, hour+10))

	if draw(hour+20) < legendaryThreshold {
		shop = append(shop, pick(pools.Legendary, hour+21))
	}

	return shop
}

// NextRotation returns the next hour boundary after now, in now's location.
func NextRotation(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, now.Hour()+1, 0, 0, 0, now.Location())
}
