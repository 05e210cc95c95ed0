package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/diettrack/internal/domain/meal"
)

// MealsRepo is an in-process store with the same contract as the postgres
// repo. Handler tests run against it.
type MealsRepo struct {
	mu    sync.RWMutex
	items map[string]meal.Meal
}

func NewMealsRepo() *MealsRepo {
	return &MealsRepo{
		items: make(map[string]meal.Meal),
	}
}

func (r *MealsRepo) Create(ctx context.Context, m meal.Meal) error {
	r.mu.Lock()
	r.items[m.ID] = m
	r.mu.Unlock()

	return nil
}

func (r *MealsRepo) ListByUser(ctx context.Context, userID string) ([]meal.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]meal.Meal, 0)

	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *MealsRepo) ListByUserOrderedByDate(ctx context.Context, userID string) ([]meal.Meal, error) {
	out, err := r.ListByUser(ctx, userID)

	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})

	return out, nil
}

func (r *MealsRepo) GetByID(ctx context.Context, id string) (meal.Meal, error) {
	r.mu.RLock()
	m, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return meal.Meal{}, meal.ErrNotFound
	}

	return m, nil
}

func (r *MealsRepo) Update(ctx context.Context, id string, req meal.UpdateMealRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]

	if !ok {
		return meal.ErrNotFound
	}

	m.Name = req.Name
	m.Description = req.Description
	m.IsOnDiet = *req.IsOnDiet
	m.Date = req.Date.UnixMilli()
	r.items[id] = m

	return nil
}

func (r *MealsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return meal.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
