package cache

import (
	"context"

	"github.com/geocoder89/diettrack/internal/domain/meal"
)

// MetricsCache holds computed per-user metrics between reads. Mutating a
// meal must invalidate the owner's entry. Implementations are best effort:
// a miss or a backend failure just means metrics get recomputed.
type MetricsCache interface {
	Get(ctx context.Context, userID string) (meal.Metrics, bool)
	Set(ctx context.Context, userID string, m meal.Metrics)
	Invalidate(ctx context.Context, userID string)
}
