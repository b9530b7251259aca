package ui

import (
	"strings"
)

// histLen bounds the usage history rings; one sample per refresh.
const histLen = 60

// pushSample appends v to the ring, dropping the oldest samples beyond max.
// Unmeasured values (negative) are recorded as zero so the timeline keeps
// its shape.
func pushSample(hist []float64, v float64, max int) []float64 {
	if v < 0 {
		v = 0
	}
	hist = append(hist, v)
	if len(hist) > max {
		hist = hist[len(hist)-max:]
	}
	return hist
}

// subBlocks are the fractional fill characters used by sparkline.
var subBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders a one-row chart of percentage samples (0-100), resampled
// to fit width columns. Each cell is colored by its own value.
func sparkline(data []float64, width int) string {
	if len(data) == 0 || width < 1 {
		return ""
	}
	resampled := resampleData(data, width)

	var sb strings.Builder
	for _, v := range resampled {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(subBlocks)-1))
		sb.WriteString(usageColor(v).Render(string(subBlocks[idx])))
	}
	return sb.String()
}

// resampleData reduces data to fit targetWidth columns by averaging buckets.
func resampleData(data []float64, targetWidth int) []float64 {
	if len(data) <= targetWidth {
		return data
	}
	result := make([]float64, targetWidth)
	for i := 0; i < targetWidth; i++ {
		srcStart := i * len(data) / targetWidth
		srcEnd := (i + 1) * len(data) / targetWidth
		if srcEnd > len(data) {
			srcEnd = len(data)
		}
		if srcStart >= srcEnd {
			srcStart = srcEnd - 1
		}
		sum := 0.0
		for j := srcStart; j < srcEnd; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(srcEnd-srcStart)
	}
	return result
}
