package utils

// MetricsCacheKey builds the cache key for one user's metrics. Versioned so
// a payload shape change can bust old entries.
func MetricsCacheKey(userID string) string {
	return "metrics:v1:user=" + userID
}
