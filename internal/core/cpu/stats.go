package cpu

import "browserperf/internal/domain"

// Aggregate reduces a finished series. An empty series yields all zeros.
func Aggregate(series domain.SampleSeries) domain.CPUStats {
	if len(series) == 0 {
		return domain.CPUStats{}
	}

	stats := domain.CPUStats{Min: series[0], Max: series[0]}

	var sum float64
	for _, v := range series {
		sum += v
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
	}

	// Rounding in the sum must not push avg outside [min, max].
	stats.Avg = min(max(sum/float64(len(series)), stats.Min), stats.Max)

	return stats
}
