package report

import (
	"strconv"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(benchmark.ToMilliseconds(d), 'f', 3, 64)
}

// Throughput returns how many records per millisecond a write of scale records took, 0 for a zero duration.
func Throughput(scale int, d time.Duration) float64 {
	millis := benchmark.ToMilliseconds(d)
	if millis <= 0 {
		return 0
	}

	return float64(scale) / millis
}

func formatThroughput(scale int, d time.Duration) string {
	return strconv.FormatFloat(Throughput(scale, d), 'f', 2, 64)
}
