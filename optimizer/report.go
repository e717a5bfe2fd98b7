package optimizer

import "fmt"

// ReductionPercent is (original - optimized) / original * 100. A zero or
// negative original size yields 0 instead of dividing by zero.
func ReductionPercent(original, optimized int64) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-optimized) / float64(original) * 100
}

// FormatMB renders a byte count as megabytes with one decimal.
func FormatMB(size int64) string {
	return fmt.Sprintf("%.1fMB", float64(size)/1024/1024)
}

// SizeLine is the human-readable size summary printed after each job.
func SizeLine(original, optimized int64) string {
	return fmt.Sprintf("Size reduction: %s -> %s (%.1f%% reduction)",
		FormatMB(original), FormatMB(optimized), ReductionPercent(original, optimized))
}
