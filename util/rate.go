package util

// Delta returns curr - prev, or 0 if curr < prev (counter wrap).
func Delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}

// CPUPct computes a usage percentage from two tick samples: the active
// delta as a share of the total delta. Returns 0 when no time passed.
func CPUPct(prevActive, currActive, prevTotal, currTotal uint64) float64 {
	dtotal := Delta(prevTotal, currTotal)
	if dtotal == 0 {
		return 0
	}
	dactive := Delta(prevActive, currActive)
	return float64(dactive) / float64(dtotal) * 100
}
